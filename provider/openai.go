package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/linetl"
)

// deepseekRelayHint replaces the message of a 403 from the direct DeepSeek API.
const deepseekRelayHint = "DeepSeek API returned 403 Forbidden. Please enable 'API Relay' in API Settings. / DeepSeek API 返回 403 禁止访问，请在 API 设置中开启「中转 API」。"

type chatOptions struct {
	baseURL  string            // go-openai base URL, "/chat/completions" is appended
	fullURL  string            // exact request URL, overrides baseURL
	headers  map[string]string // extra request headers
	keyless  bool              // API key is optional
	fixedTmp *float32          // ignores the configured temperature
}

// chatAdapter talks to an OpenAI-compatible chat completions endpoint.
type chatAdapter struct {
	method linetl.Method
	chat   chatOptions
	opts   Options
}

func newChatAdapter(m linetl.Method, chat chatOptions, opts Options) *chatAdapter {
	if m == linetl.MethodOpenAI {
		one := float32(1)
		chat.fixedTmp = &one
	}
	return &chatAdapter{method: m, chat: chat, opts: opts}
}

func (a *chatAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	if !a.chat.keyless {
		if err := requireAPIKey(a.method, p.APIKey); err != nil {
			return "", err
		}
	}

	cfg := openai.DefaultConfig(strings.TrimSpace(p.APIKey))
	cfg.BaseURL = a.chat.baseURL
	return a.complete(ctx, cfg, p)
}

// complete sends one system+user exchange with the given client config.
func (a *chatAdapter) complete(ctx context.Context, cfg openai.ClientConfig, p linetl.Params) (string, error) {
	cfg.HTTPClient = &headerDoer{client: a.opts.HTTPClient, url: a.chat.fullURL, headers: a.chat.headers}
	client := openai.NewClientWithConfig(cfg)

	def := linetl.DefaultProviderConfig(a.method)
	model := p.Model
	if model == "" {
		model = def.Model
	}
	temp := float32(p.TemperatureOr(def.TemperatureOr(0.7)))
	if a.chat.fixedTmp != nil {
		temp = *a.chat.fixedTmp
	}
	// Reasoning models only accept the default temperature.
	if isReasoningModel(model) {
		temp = 1
	}

	userPrompt := linetl.EffectivePrompt(p.UserPrompt, linetl.DefaultUserPrompt)
	prompt := linetl.BuildPrompt(p.Text, userPrompt, p.TargetLang, p.SourceLang, p.FullText)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: linetl.EffectivePrompt(p.SysPrompt, linetl.DefaultSysPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temp,
	})
	if err != nil {
		a.opts.Logger.Debug("chat completion failed",
			zap.String("method", string(a.method)),
			zap.String("model", model),
			zap.Error(err))
		return "", a.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", invalidResponse(a.method)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// mapError converts go-openai errors into ProviderErrors.
func (a *chatAdapter) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatusCode
		code := status
		if n, ok := apiErr.Code.(int); ok {
			code = n
		}
		msg := apiErr.Message
		if msg == "" {
			return linetl.NewProviderError(a.method, status, errorMessage(nil, status), err)
		}
		return linetl.NewProviderError(a.method, status, fmt.Sprintf("[%d] %s%s", code, msg, hint(status)), nil)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		status := reqErr.HTTPStatusCode
		return linetl.NewProviderError(a.method, status, errorMessage(reqErr.Body, status), nil)
	}

	return transportError(a.method, err)
}

// deepseekAdapter switches between the direct API and the relay.
type deepseekAdapter struct {
	direct *chatAdapter
	relay  *chatAdapter
}

func newDeepSeekAdapter(baseURL, relayURL string, opts Options) *deepseekAdapter {
	return &deepseekAdapter{
		direct: newChatAdapter(linetl.MethodDeepSeek, chatOptions{baseURL: baseURL}, opts),
		relay:  newChatAdapter(linetl.MethodDeepSeek, chatOptions{fullURL: relayURL}, opts),
	}
}

func (a *deepseekAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	if p.UseRelay {
		return a.relay.Translate(ctx, p)
	}

	out, err := a.direct.Translate(ctx, p)
	if linetl.StatusCode(err) == 403 {
		return "", linetl.NewProviderError(linetl.MethodDeepSeek, 403, deepseekRelayHint, nil)
	}
	return out, err
}

// azureOpenAIAdapter addresses a deployment on an Azure OpenAI resource.
type azureOpenAIAdapter struct {
	opts Options
}

func (a *azureOpenAIAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodAzureOpenAI
	endpoint, err := requireURL(m, p.URL)
	if err != nil {
		return "", err
	}
	if err := requireAPIKey(m, p.APIKey); err != nil {
		return "", err
	}

	def := linetl.DefaultProviderConfig(m)
	if p.Model == "" {
		p.Model = def.Model
	}

	cfg := openai.DefaultAzureConfig(strings.TrimSpace(p.APIKey), endpoint)
	cfg.APIVersion = p.APIVersion
	if cfg.APIVersion == "" {
		cfg.APIVersion = def.APIVersion
	}
	// Deployment names are used verbatim.
	cfg.AzureModelMapperFunc = func(model string) string { return model }

	chat := &chatAdapter{method: m, opts: a.opts}
	return chat.complete(ctx, cfg, p)
}

// customLLMAdapter calls any OpenAI-compatible server by its full URL.
type customLLMAdapter struct {
	opts Options
}

func (a *customLLMAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	const m = linetl.MethodLLM
	url := strings.TrimSpace(p.URL)
	if url == "" {
		url = linetl.DefaultProviderConfig(m).URL
	}

	chat := newChatAdapter(m, chatOptions{fullURL: url, keyless: true}, a.opts)
	return chat.Translate(ctx, p)
}

func isReasoningModel(model string) bool {
	model = strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
