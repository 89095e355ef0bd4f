package provider

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZaguanLabs/linetl"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{
			name:   "nested message with numeric code",
			body:   `{"error":{"message":"Invalid key","code":40101}}`,
			status: 401,
			want:   "[40101] Invalid key (API Key invalid or expired / API 密钥无效或已过期)",
		},
		{
			name:   "nested message with string code",
			body:   `{"error":{"message":"slow down","code":"rate_limited"}}`,
			status: 429,
			want:   "[429] slow down (Rate limit exceeded, please retry later / 请求过于频繁，请稍后重试)",
		},
		{
			name:   "top-level error string",
			body:   `{"error":"forbidden here"}`,
			status: 403,
			want:   "[403] forbidden here (Access forbidden / 访问被禁止)",
		},
		{
			name:   "top-level message",
			body:   `{"message":"Quota exceeded"}`,
			status: 456,
			want:   "[456] Quota exceeded",
		},
		{
			name:   "not json",
			body:   `<html>Bad Gateway</html>`,
			status: 502,
			want:   "HTTP error! status: 502 (Server error, please retry later / 服务器错误，请稍后重试)",
		},
		{
			name:   "empty body",
			body:   ``,
			status: 400,
			want:   "HTTP error! status: 400",
		},
		{
			name:   "json without message",
			body:   `{"detail":"nope"}`,
			status: 404,
			want:   "HTTP error! status: 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), tt.status))
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	err := requireAPIKey(linetl.MethodGoogle, "  ")

	var cfgErr *linetl.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "Google Translate API Key is required", err.Error())
	assert.Equal(t, "apiKey", cfgErr.Field)

	assert.NoError(t, requireAPIKey(linetl.MethodGoogle, "k"))
}

func TestRequireURL(t *testing.T) {
	url, err := requireURL(linetl.MethodAzureOpenAI, " https://res.openai.azure.com// ")
	assert.NoError(t, err)
	assert.Equal(t, "https://res.openai.azure.com", url)

	_, err = requireURL(linetl.MethodAzureOpenAI, "")
	assert.EqualError(t, err, "Azure OpenAI endpoint URL is required")
}

func TestHeaderDoer(t *testing.T) {
	var got *http.Request
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: http.Header{}}, nil
	})}

	d := &headerDoer{
		client:  client,
		url:     "http://127.0.0.1:11434/v1/chat/completions",
		headers: map[string]string{"X-Title": "linetl"},
	}
	req, _ := http.NewRequest(http.MethodPost, "/chat/completions", nil)
	req.Header.Set("Authorization", "Bearer ")

	_, err := d.Do(req)
	assert.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434/v1/chat/completions", got.URL.String())
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.Equal(t, "linetl", got.Header.Get("X-Title"))
	assert.Equal(t, linetl.UserAgent(), got.Header.Get("User-Agent"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
