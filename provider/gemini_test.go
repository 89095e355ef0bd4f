package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/linetl"
)

func TestGemini(t *testing.T) {
	reg, _, seen := newTestServer(t, replyWith(`{"candidates":[{"content":{"parts":[{"text":" Hallo \n"}],"role":"model"}}]}`))

	got, err := adapterFor(t, reg, linetl.MethodGemini).Translate(context.Background(), linetl.Params{
		Text: "Hello", SourceLang: "en", TargetLang: "de", APIKey: "gem",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hallo", got)

	req := (*seen)[0]
	assert.Equal(t, "/gemini/models/gemini-2.5-flash:generateContent", req.Path)
	assert.Equal(t, []string{"gem"}, req.Query["key"])

	sys := req.Body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	assert.Equal(t, linetl.DefaultSysPrompt, sys)
	user := req.Body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	assert.Contains(t, user, "Hello")
	temp := req.Body["generationConfig"].(map[string]any)["temperature"]
	assert.InDelta(t, 0.7, temp, 1e-9)
}

func TestGemini_Error(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"api message", `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`, "API key not valid."},
		{"no message", `oops`, "HTTP error! status: 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, _ := newTestServer(t, func(w http.ResponseWriter, r *recorded) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})

			_, err := adapterFor(t, reg, linetl.MethodGemini).Translate(context.Background(), linetl.Params{
				Text: "Hello", SourceLang: "en", TargetLang: "de", APIKey: "gem",
			})
			require.Error(t, err)
			assert.Equal(t, 400, linetl.StatusCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	reg, _, _ := newTestServer(t, replyWith(`{"promptFeedback":{"blockReason":"SAFETY"}}`))

	_, err := adapterFor(t, reg, linetl.MethodGemini).Translate(context.Background(), linetl.Params{
		Text: "Hello", SourceLang: "en", TargetLang: "de", APIKey: "gem",
	})
	assert.ErrorContains(t, err, "Invalid response format from Gemini API")
}

func TestGemini_MissingKey(t *testing.T) {
	reg, _, _ := newTestServer(t, replyWith(`{}`))

	_, err := adapterFor(t, reg, linetl.MethodGemini).Translate(context.Background(), linetl.Params{Text: "Hello", TargetLang: "de"})
	assert.EqualError(t, err, "Gemini API Key is required")
}
