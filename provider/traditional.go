package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/linetl"
)

// gtxAdapter calls the keyless Google endpoint used by browser extensions.
type gtxAdapter struct {
	rest     *resty.Client
	endpoint string
}

func (a *gtxAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodGTX

	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     p.SourceLang,
			"tl":     p.TargetLang,
			"dt":     "t",
			"q":      p.Text,
		}).
		Get(a.endpoint)
	if err != nil {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		return "", linetl.NewProviderError(m, resp.StatusCode(), fmt.Sprintf("HTTP error! status: %d", resp.StatusCode()), nil)
	}

	// [[["Hallo","Hello",...],["Welt","World",...]],null,"en",...]
	var data []any
	if err := decode(m, resp, &data); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", invalidResponse(m)
	}
	parts, ok := data[0].([]any)
	if !ok {
		return "", invalidResponse(m)
	}

	var sb strings.Builder
	for _, part := range parts {
		seg, ok := part.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

// googleAdapter calls Cloud Translation v2.
type googleAdapter struct {
	rest     *resty.Client
	endpoint string
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func (a *googleAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodGoogle
	if err := requireAPIKey(m, p.APIKey); err != nil {
		return "", err
	}

	body := map[string]string{"q": p.Text, "target": p.TargetLang}
	if p.SourceLang != "auto" {
		body["source"] = p.SourceLang
	}

	var out googleResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("key", strings.TrimSpace(p.APIKey)).
		SetBody(body).
		Post(a.endpoint)
	if err != nil {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		return "", httpError(m, resp)
	}
	if err := decode(m, resp, &out); err != nil {
		return "", err
	}
	if len(out.Data.Translations) == 0 {
		return "", invalidResponse(m)
	}
	return out.Data.Translations[0].TranslatedText, nil
}

// deeplAdapter posts to a DeepL proxy that forwards the auth key.
type deeplAdapter struct {
	rest     *resty.Client
	endpoint string
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (a *deeplAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodDeepL
	if err := requireAPIKey(m, p.APIKey); err != nil {
		return "", err
	}

	body := map[string]string{
		"text":        p.Text,
		"target_lang": p.TargetLang,
		"authKey":     strings.TrimSpace(p.APIKey),
	}
	if p.SourceLang != "auto" {
		body["source_lang"] = p.SourceLang
	}

	var out deeplResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpointOr(p.URL, a.endpoint))
	if err != nil {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		return "", httpError(m, resp)
	}
	if err := decode(m, resp, &out); err != nil {
		return "", err
	}
	if len(out.Translations) == 0 {
		return "", invalidResponse(m)
	}
	return out.Translations[0].Text, nil
}

// deeplxAdapter calls a keyless DeepLX server.
type deeplxAdapter struct {
	rest     *resty.Client
	endpoint string
}

func (a *deeplxAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodDeepLX

	body := map[string]string{"text": p.Text, "target_lang": p.TargetLang}
	if p.SourceLang != "auto" {
		body["source_lang"] = p.SourceLang
	}

	var out struct {
		Data string `json:"data"`
	}
	resp, err := a.rest.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpointOr(p.URL, a.endpoint))
	if err != nil {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		return "", httpError(m, resp)
	}
	if err := decode(m, resp, &out); err != nil {
		return "", err
	}
	return out.Data, nil
}

// azureAdapter calls Azure AI Translator v3.
type azureAdapter struct {
	rest     *resty.Client
	endpoint string
}

type azureResponse []struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (a *azureAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodAzure
	if err := requireAPIKey(m, p.APIKey); err != nil {
		return "", err
	}
	region := strings.TrimSpace(p.Region)
	if region == "" {
		return "", &linetl.ConfigError{Method: m, Field: "region", Message: "Azure Translate region is required"}
	}

	req := a.rest.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", strings.TrimSpace(p.APIKey)).
		SetHeader("Ocp-Apim-Subscription-Region", region).
		SetQueryParam("api-version", "3.0").
		SetQueryParam("to", p.TargetLang).
		SetBody([]map[string]string{{"Text": p.Text}})
	if p.SourceLang != "auto" {
		req.SetQueryParam("from", p.SourceLang)
	}

	var out azureResponse
	resp, err := req.Post(a.endpoint)
	if err != nil {
		return "", transportError(m, err)
	}
	if resp.IsError() {
		return "", httpError(m, resp)
	}
	if err := decode(m, resp, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", invalidResponse(m)
	}
	return out[0].Translations[0].Text, nil
}

// endpointOr returns the configured URL, or def when it is blank.
func endpointOr(url, def string) string {
	if url = strings.TrimSpace(url); url != "" {
		return url
	}
	return def
}
