// Package provider implements linetl.Adapter for every translation method.
//
// Traditional APIs (GTX, Google, DeepL, DeepLX, Azure) and Gemini are called
// through resty. OpenAI-compatible chat endpoints go through go-openai.
// Adapters make a single attempt: retries, caching and pacing belong to the
// linetl engine.
package provider

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/linetl"
)

// Endpoints holds the base URL of every provider. Tests point them at local servers.
type Endpoints struct {
	GTX           string
	Google        string
	DeepL         string // used when the config has no URL
	DeepLX        string // used when the config has no URL
	Azure         string
	DeepSeek      string
	DeepSeekRelay string // full chat completions URL
	OpenAI        string
	Gemini        string
	Perplexity    string
	SiliconFlow   string
	Groq          string
	OpenRouter    string
}

// DefaultEndpoints returns the public endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		GTX:           "https://translate.googleapis.com/translate_a/single",
		Google:        "https://translation.googleapis.com/language/translate/v2",
		DeepL:         "https://api-edgeone.newzone.top/api/deepl",
		DeepLX:        "https://deeplx.aishort.top/translate",
		Azure:         "https://api.cognitive.microsofttranslator.com/translate",
		DeepSeek:      "https://api.deepseek.com",
		DeepSeekRelay: "https://llm-proxy.aishort.top/api/deepseek",
		OpenAI:        "https://api.openai.com/v1",
		Gemini:        "https://generativelanguage.googleapis.com/v1beta",
		Perplexity:    "https://api.perplexity.ai",
		SiliconFlow:   "https://api.siliconflow.cn/v1",
		Groq:          "https://api.groq.com/openai/v1",
		OpenRouter:    "https://openrouter.ai/api/v1",
	}
}

// DefaultTimeout bounds a single HTTP request when the caller sets no deadline.
const DefaultTimeout = 120 * time.Second

// Options configures NewRegistry.
type Options struct {
	Endpoints  Endpoints    // zero fields fall back to DefaultEndpoints
	HTTPClient *http.Client // nil uses a client with DefaultTimeout
	Logger     *zap.Logger
}

// Registry resolves a method to its adapter. It implements linetl.Registry.
type Registry struct {
	adapters map[linetl.Method]linetl.Adapter
}

// NewRegistry builds an adapter for every method in linetl.Methods.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()

	rest := resty.NewWithClient(opts.HTTPClient).
		SetLogger(opts.Logger.Named("http").Sugar()).
		SetHeader("User-Agent", linetl.UserAgent())

	e := opts.Endpoints
	chat := func(m linetl.Method, base string) linetl.Adapter {
		return newChatAdapter(m, chatOptions{baseURL: base}, opts)
	}

	adapters := map[linetl.Method]linetl.Adapter{
		linetl.MethodGTX:    &gtxAdapter{rest: rest, endpoint: e.GTX},
		linetl.MethodGoogle: &googleAdapter{rest: rest, endpoint: e.Google},
		linetl.MethodDeepL:  &deeplAdapter{rest: rest, endpoint: e.DeepL},
		linetl.MethodDeepLX: &deeplxAdapter{rest: rest, endpoint: e.DeepLX},
		linetl.MethodAzure:  &azureAdapter{rest: rest, endpoint: e.Azure},
		linetl.MethodGemini: &geminiAdapter{rest: rest, endpoint: e.Gemini},

		linetl.MethodDeepSeek:    newDeepSeekAdapter(e.DeepSeek, e.DeepSeekRelay, opts),
		linetl.MethodOpenAI:      chat(linetl.MethodOpenAI, e.OpenAI),
		linetl.MethodPerplexity:  chat(linetl.MethodPerplexity, e.Perplexity),
		linetl.MethodSiliconFlow: chat(linetl.MethodSiliconFlow, e.SiliconFlow),
		linetl.MethodGroq:        chat(linetl.MethodGroq, e.Groq),
		linetl.MethodOpenRouter: newChatAdapter(linetl.MethodOpenRouter, chatOptions{
			baseURL: e.OpenRouter,
			headers: map[string]string{"HTTP-Referer": linetl.Repository, "X-Title": linetl.Name},
		}, opts),
		linetl.MethodAzureOpenAI: &azureOpenAIAdapter{opts: opts},
		linetl.MethodLLM:         &customLLMAdapter{opts: opts},
	}

	return &Registry{adapters: adapters}
}

// Adapter returns the adapter for m.
func (r *Registry) Adapter(m linetl.Method) (linetl.Adapter, bool) {
	a, ok := r.adapters[m]
	return a, ok
}

func (o Options) withDefaults() Options {
	def := DefaultEndpoints()
	e := &o.Endpoints
	for _, f := range []struct {
		field *string
		value string
	}{
		{&e.GTX, def.GTX},
		{&e.Google, def.Google},
		{&e.DeepL, def.DeepL},
		{&e.DeepLX, def.DeepLX},
		{&e.Azure, def.Azure},
		{&e.DeepSeek, def.DeepSeek},
		{&e.DeepSeekRelay, def.DeepSeekRelay},
		{&e.OpenAI, def.OpenAI},
		{&e.Gemini, def.Gemini},
		{&e.Perplexity, def.Perplexity},
		{&e.SiliconFlow, def.SiliconFlow},
		{&e.Groq, def.Groq},
		{&e.OpenRouter, def.OpenRouter},
	} {
		if *f.field == "" {
			*f.field = f.value
		}
	}

	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

var _ linetl.Registry = (*Registry)(nil)
