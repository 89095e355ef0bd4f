package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/linetl"
)

// geminiAdapter calls the Gemini generateContent API.
type geminiAdapter struct {
	rest     *resty.Client
	endpoint string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction geminiContent   `json:"systemInstruction"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *geminiAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodGemini
	if err := requireAPIKey(m, p.APIKey); err != nil {
		return "", err
	}

	def := linetl.DefaultProviderConfig(m)
	model := p.Model
	if model == "" {
		model = def.Model
	}

	userPrompt := linetl.EffectivePrompt(p.UserPrompt, linetl.DefaultUserPrompt)
	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{
		Text: linetl.BuildPrompt(p.Text, userPrompt, p.TargetLang, p.SourceLang, p.FullText),
	}}}}
	body.SystemInstruction = geminiContent{Parts: []geminiPart{{
		Text: linetl.EffectivePrompt(p.SysPrompt, linetl.DefaultSysPrompt),
	}}}
	body.GenerationConfig.Temperature = p.TemperatureOr(def.TemperatureOr(0.7))

	var out geminiResponse
	var failure geminiError
	resp, err := a.rest.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetQueryParam("key", strings.TrimSpace(p.APIKey)).
		SetBody(body).
		SetResult(&out).
		SetError(&failure).
		ForceContentType("application/json").
		Post(a.endpoint + "/models/{model}:generateContent")
	if err != nil && (resp == nil || resp.StatusCode() == 0) {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		msg := failure.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode())
		}
		return "", linetl.NewProviderError(m, resp.StatusCode(), msg, nil)
	}
	if err != nil {
		return "", linetl.NewProviderError(m, 0, "Invalid response format from Gemini API", err)
	}

	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil || len(out.Candidates[0].Content.Parts) == 0 {
		return "", invalidResponse(m)
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}
