package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/linetl"
)

// hint returns the bilingual explanation appended to HTTP error messages.
func hint(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return " (API Key invalid or expired / API 密钥无效或已过期)"
	case status == http.StatusForbidden:
		return " (Access forbidden / 访问被禁止)"
	case status == http.StatusTooManyRequests:
		return " (Rate limit exceeded, please retry later / 请求过于频繁，请稍后重试)"
	case status >= 500:
		return " (Server error, please retry later / 服务器错误，请稍后重试)"
	}
	return ""
}

// errorBody covers the error shapes returned by the supported APIs.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

type nestedError struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte, status int) string {
	h := hint(status)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fmt.Sprintf("HTTP error! status: %d%s", status, h)
	}

	var nested nestedError
	if json.Unmarshal(eb.Error, &nested) == nil && nested.Message != "" {
		code := status
		var n float64
		if json.Unmarshal(nested.Code, &n) == nil {
			code = int(n)
		}
		return fmt.Sprintf("[%d] %s%s", code, nested.Message, h)
	}
	for _, raw := range []json.RawMessage{eb.Error, eb.Message} {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && msg != "" {
			return fmt.Sprintf("[%d] %s%s", status, msg, h)
		}
	}
	return fmt.Sprintf("HTTP error! status: %d%s", status, h)
}

// httpError turns a non-2xx response into a ProviderError.
func httpError(m linetl.Method, resp *resty.Response) error {
	return linetl.NewProviderError(m, resp.StatusCode(), errorMessage(resp.Body(), resp.StatusCode()), nil)
}

// transportError wraps a failure that produced no response.
func transportError(m linetl.Method, err error) error {
	return linetl.NewProviderError(m, 0, "request failed", err)
}

// invalidResponse reports a 2xx body without the expected fields.
func invalidResponse(m linetl.Method) error {
	return linetl.NewProviderError(m, 0, fmt.Sprintf("Invalid response format from %s API", m.Label()), nil)
}

func requireAPIKey(m linetl.Method, key string) error {
	if strings.TrimSpace(key) == "" {
		return &linetl.ConfigError{Method: m, Field: "apiKey", Message: m.Label() + " API Key is required"}
	}
	return nil
}

// requireURL returns the URL without trailing slashes.
func requireURL(m linetl.Method, url string) (string, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return "", &linetl.ConfigError{Method: m, Field: "url", Message: m.Label() + " endpoint URL is required"}
	}
	return url, nil
}

// decode unmarshals a successful body into v.
func decode(m linetl.Method, resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return linetl.NewProviderError(m, 0, fmt.Sprintf("Invalid response format from %s API", m.Label()), err)
	}
	return nil
}

// headerDoer decorates the HTTP client handed to go-openai.
type headerDoer struct {
	client  *http.Client
	url     string // replaces the request URL when set
	headers map[string]string
}

func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	if d.url != "" {
		u, err := req.URL.Parse(d.url)
		if err != nil {
			return nil, err
		}
		req.URL = u
		req.Host = u.Host
	}
	if req.Header.Get("Authorization") == "Bearer " {
		req.Header.Del("Authorization")
	}
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", linetl.UserAgent())
	return d.client.Do(req)
}
