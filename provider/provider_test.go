package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/linetl"
)

// recorded is one request seen by the test server.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

// newTestServer returns a registry whose endpoints all point at a local server.
func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *recorded)) (*Registry, *httptest.Server, *[]recorded) {
	t.Helper()
	var seen []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Raw:    raw,
		}
		_ = json.Unmarshal(raw, &rec.Body)
		seen = append(seen, rec)
		w.Header().Set("Content-Type", "application/json")
		handler(w, &rec)
	}))
	t.Cleanup(srv.Close)

	u := srv.URL
	reg := NewRegistry(Options{
		Endpoints: Endpoints{
			GTX:           u + "/gtx",
			Google:        u + "/google",
			DeepL:         u + "/deepl",
			DeepLX:        u + "/deeplx",
			Azure:         u + "/azure",
			DeepSeek:      u + "/deepseek",
			DeepSeekRelay: u + "/relay/deepseek",
			OpenAI:        u + "/openai/v1",
			Gemini:        u + "/gemini",
			Perplexity:    u + "/perplexity",
			SiliconFlow:   u + "/siliconflow/v1",
			Groq:          u + "/groq/v1",
			OpenRouter:    u + "/openrouter/v1",
		},
		HTTPClient: srv.Client(),
	})
	return reg, srv, &seen
}

func adapterFor(t *testing.T, reg *Registry, m linetl.Method) linetl.Adapter {
	t.Helper()
	a, ok := reg.Adapter(m)
	require.True(t, ok, "no adapter for %s", m)
	return a
}

func TestRegistry_CoversEveryMethod(t *testing.T) {
	reg := NewRegistry(Options{})
	for _, m := range linetl.Methods() {
		_, ok := reg.Adapter(m)
		assert.True(t, ok, "missing adapter for %s", m)
	}

	_, ok := reg.Adapter("carrier-pigeon")
	assert.False(t, ok)
}

func TestDefaultEndpoints(t *testing.T) {
	opts := Options{Endpoints: Endpoints{GTX: "http://localhost/gtx"}}.withDefaults()

	assert.Equal(t, "http://localhost/gtx", opts.Endpoints.GTX)
	assert.Equal(t, DefaultEndpoints().Google, opts.Endpoints.Google)
	assert.NotNil(t, opts.HTTPClient)
	assert.NotNil(t, opts.Logger)
}

func TestMockAdapter(t *testing.T) {
	mock := NewMockAdapter()
	reg := NewMockRegistry(mock)

	a := adapterFor(t, reg, linetl.MethodDeepL)
	got, err := a.Translate(context.Background(), linetl.Params{Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hola", got)

	got, _ = a.Translate(context.Background(), linetl.Params{Text: "Goodbye"})
	assert.Equal(t, "[Goodbye]", got)
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "Goodbye", mock.LastParams().Text)

	mock.Err = errors.New("boom")
	_, err = a.Translate(context.Background(), linetl.Params{Text: "Hello"})
	assert.EqualError(t, err, "boom")

	mock.Reset()
	assert.Zero(t, mock.CallCount())
	assert.Nil(t, mock.LastParams())
}
