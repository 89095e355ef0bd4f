package linetl

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Defaults applied when a provider config leaves a knob unset.
const (
	DefaultConcurrency   = 10
	DefaultDelay         = 200 * time.Millisecond
	DefaultBatchDelay    = 500 * time.Millisecond
	DefaultContextWindow = 20
	DefaultChunkSize     = 5000
)

// ProviderConfig holds the credentials and tuning knobs of one provider.
// Zero values mean "not set"; pointer and slice semantics follow the JSON
// settings format, where absent keys fall back to defaults.
type ProviderConfig struct {
	APIKey        string   `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	Region        string   `json:"region,omitempty" yaml:"region,omitempty"`
	Model         string   `json:"model,omitempty" yaml:"model,omitempty"`
	APIVersion    string   `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	ChunkSize     int      `json:"chunkSize,omitempty" yaml:"chunkSize,omitempty"`
	DelayTime     int      `json:"delayTime,omitempty" yaml:"delayTime,omitempty"` // milliseconds
	BatchSize     int      `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	ContextWindow int      `json:"contextWindow,omitempty" yaml:"contextWindow,omitempty"`
	UseRelay      bool     `json:"useRelay,omitempty" yaml:"useRelay,omitempty"`
}

func temperature(v float64) *float64 { return &v }

func llmDefaults(model string, temp float64) ProviderConfig {
	return ProviderConfig{Model: model, Temperature: temperature(temp), BatchSize: 20, ContextWindow: 50}
}

// DefaultProviderConfig returns the default config of m.
func DefaultProviderConfig(m Method) ProviderConfig {
	switch m {
	case MethodGTX:
		return ProviderConfig{BatchSize: 100}
	case MethodGoogle:
		return ProviderConfig{DelayTime: 200, BatchSize: 100}
	case MethodDeepL:
		return ProviderConfig{ChunkSize: 5000, DelayTime: 200, BatchSize: 20}
	case MethodDeepLX:
		return ProviderConfig{ChunkSize: 1000, DelayTime: 200, BatchSize: 10}
	case MethodAzure:
		return ProviderConfig{ChunkSize: 10000, DelayTime: 200, Region: "eastasia", BatchSize: 100}
	case MethodDeepSeek:
		return llmDefaults("deepseek-chat", 0.7)
	case MethodOpenAI:
		return llmDefaults("gpt-5-mini", 1)
	case MethodGemini:
		return llmDefaults("gemini-2.5-flash", 0.7)
	case MethodPerplexity:
		return llmDefaults("sonar", 0.7)
	case MethodAzureOpenAI:
		cfg := llmDefaults("gpt-5-mini", 0.7)
		cfg.APIVersion = "2025-08-07"
		return cfg
	case MethodSiliconFlow:
		return llmDefaults("deepseek-ai/DeepSeek-V3", 0.7)
	case MethodGroq:
		return llmDefaults("openai/gpt-oss-20b", 0.7)
	case MethodOpenRouter:
		return llmDefaults("mistralai/devstral-2512:free", 0.7)
	case MethodLLM:
		cfg := llmDefaults("llama3.2", 0.7)
		cfg.URL = "http://127.0.0.1:11434/v1/chat/completions"
		return cfg
	}
	return ProviderConfig{}
}

// DefaultProviderConfigs returns a fresh default config for every method.
func DefaultProviderConfigs() map[Method]ProviderConfig {
	out := make(map[Method]ProviderConfig, len(methodOrder))
	for _, m := range methodOrder {
		out[m] = DefaultProviderConfig(m)
	}
	return out
}

// configKeys lists the settings keys each method's config carries. Imported
// configs with a different key set are considered stale.
var configKeys = map[Method][]string{
	MethodGTX:         {"batchSize"},
	MethodGoogle:      {"apiKey", "delayTime", "batchSize"},
	MethodDeepL:       {"url", "apiKey", "chunkSize", "delayTime", "batchSize"},
	MethodDeepLX:      {"url", "chunkSize", "delayTime", "batchSize"},
	MethodAzure:       {"apiKey", "chunkSize", "delayTime", "region", "batchSize"},
	MethodDeepSeek:    {"apiKey", "model", "temperature", "batchSize", "contextWindow", "useRelay"},
	MethodOpenAI:      {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodGemini:      {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodPerplexity:  {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodAzureOpenAI: {"url", "apiKey", "model", "apiVersion", "temperature", "batchSize", "contextWindow"},
	MethodSiliconFlow: {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodGroq:        {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodOpenRouter:  {"apiKey", "model", "temperature", "batchSize", "contextWindow"},
	MethodLLM:         {"url", "apiKey", "model", "temperature", "batchSize", "contextWindow"},
}

// ConfigKeys returns the settings keys of m's config, or nil for unknown methods.
func ConfigKeys(m Method) []string {
	return slices.Clone(configKeys[m])
}

// HasConfigKey reports whether m's config carries key.
func HasConfigKey(m Method, key string) bool {
	return slices.Contains(configKeys[m], key)
}

// IsConfigStructureValid reports whether keys matches m's key set exactly.
func IsConfigStructureValid(m Method, keys []string) bool {
	want, ok := configKeys[m]
	if !ok {
		return false
	}
	got := slices.Sorted(maps.Keys(toSet(keys)))
	return slices.Equal(got, slices.Sorted(slices.Values(want))) && len(got) == len(keys)
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// ResetProviderConfig returns m's default config, keeping the API key of old.
func ResetProviderConfig(m Method, old ProviderConfig) ProviderConfig {
	cfg := DefaultProviderConfig(m)
	if HasConfigKey(m, "apiKey") {
		cfg.APIKey = old.APIKey
	}
	return cfg
}

// Merge returns p with every field that is set in over replacing its own.
func (p ProviderConfig) Merge(over ProviderConfig) ProviderConfig {
	if over.APIKey != "" {
		p.APIKey = over.APIKey
	}
	if over.URL != "" {
		p.URL = over.URL
	}
	if over.Region != "" {
		p.Region = over.Region
	}
	if over.Model != "" {
		p.Model = over.Model
	}
	if over.APIVersion != "" {
		p.APIVersion = over.APIVersion
	}
	if over.Temperature != nil {
		p.Temperature = temperature(*over.Temperature)
	}
	if over.ChunkSize > 0 {
		p.ChunkSize = over.ChunkSize
	}
	if over.DelayTime > 0 {
		p.DelayTime = over.DelayTime
	}
	if over.BatchSize > 0 {
		p.BatchSize = over.BatchSize
	}
	if over.ContextWindow > 0 {
		p.ContextWindow = over.ContextWindow
	}
	if over.UseRelay {
		p.UseRelay = true
	}
	return p
}

// RuntimeConfig is everything one translation run needs. It is passed by
// value and never modified by the engine.
type RuntimeConfig struct {
	Method     Method
	SourceLang string
	TargetLang string
	Provider   ProviderConfig

	SysPrompt  string
	UserPrompt string
	UseCache   bool

	// RetryCount is the number of retries after a failed attempt. Zero means
	// no retries, so a literal RuntimeConfig{} never retries; start from
	// DefaultRuntimeConfig for the default of DefaultRetryCount, or set a
	// negative value to request it explicitly.
	RetryCount   int
	RetryTimeout time.Duration // 0 uses DefaultRetryTimeout

	// RequestsPerMinute caps provider calls for the run (0 = unlimited).
	RequestsPerMinute int
}

// DefaultRuntimeConfig returns a config for m with its default provider
// settings, "auto" → "zh" languages and caching enabled.
func DefaultRuntimeConfig(m Method) RuntimeConfig {
	return RuntimeConfig{
		Method:       m,
		SourceLang:   "auto",
		TargetLang:   "zh",
		Provider:     DefaultProviderConfig(m),
		SysPrompt:    DefaultSysPrompt,
		UserPrompt:   DefaultUserPrompt,
		UseCache:     true,
		RetryCount:   DefaultRetryCount,
		RetryTimeout: DefaultRetryTimeout,
	}
}

// EffectiveSysPrompt returns the system prompt, or the default when blank.
func (c RuntimeConfig) EffectiveSysPrompt() string {
	return EffectivePrompt(c.SysPrompt, DefaultSysPrompt)
}

// EffectiveUserPrompt returns the user prompt, or the default when blank.
func (c RuntimeConfig) EffectiveUserPrompt() string {
	return EffectivePrompt(c.UserPrompt, DefaultUserPrompt)
}

// Concurrency returns the number of in-flight line requests (min 1).
func (c RuntimeConfig) Concurrency() int {
	if c.Provider.BatchSize <= 0 {
		return DefaultConcurrency
	}
	return c.Provider.BatchSize
}

// Delay returns the pause between provider calls.
func (c RuntimeConfig) Delay() time.Duration {
	if c.Provider.DelayTime <= 0 {
		return DefaultDelay
	}
	return time.Duration(c.Provider.DelayTime) * time.Millisecond
}

// BatchDelay returns the pause between context batches.
func (c RuntimeConfig) BatchDelay() time.Duration {
	if c.Provider.DelayTime <= 0 {
		return DefaultBatchDelay
	}
	return time.Duration(c.Provider.DelayTime) * time.Millisecond
}

// ContextWindow returns the initial context batch size for n lines.
func (c RuntimeConfig) ContextWindow(n int) int {
	w := c.Provider.ContextWindow
	if w <= 0 {
		w = DefaultContextWindow
	}
	return min(w, n)
}

// Retry returns the retry policy of the run.
func (c RuntimeConfig) Retry() RetryConfig {
	return RetryConfigFor(c.Method, c.RetryCount, c.RetryTimeout)
}

// LLMSettings returns the model inputs that enter the cache suffix.
func (c RuntimeConfig) LLMSettings() LLMSettings {
	return LLMSettings{
		Model:       c.Provider.Model,
		Temperature: c.Provider.TemperatureOr(0),
		SysPrompt:   c.EffectiveSysPrompt(),
		UserPrompt:  c.EffectiveUserPrompt(),
	}
}

// CacheSuffix returns the cache suffix of the run.
func (c RuntimeConfig) CacheSuffix() string {
	return CacheSuffix(c.SourceLang, c.TargetLang, c.Method, c.LLMSettings())
}

// Params builds the dispatch parameters for text.
func (c RuntimeConfig) Params(text, suffix, fullText string) Params {
	p := Params{
		Text:        text,
		CacheSuffix: suffix,
		Method:      c.Method,
		SourceLang:  c.SourceLang,
		TargetLang:  c.TargetLang,
		UseCache:    c.UseCache,
		APIKey:      c.Provider.APIKey,
		Region:      c.Provider.Region,
		URL:         c.Provider.URL,
		Model:       c.Provider.Model,
		APIVersion:  c.Provider.APIVersion,
		Temperature: c.Provider.Temperature,
		SysPrompt:   c.EffectiveSysPrompt(),
		UserPrompt:  c.EffectiveUserPrompt(),
		FullText:    fullText,
	}
	if c.Method == MethodDeepSeek {
		p.UseRelay = c.Provider.UseRelay
	}
	return p
}

// TemperatureOr returns the configured temperature or def when unset.
func (p ProviderConfig) TemperatureOr(def float64) float64 {
	if p.Temperature == nil {
		return def
	}
	return *p.Temperature
}

// Validate reports configuration problems that make a run pointless:
// an unknown method, a missing API key, a missing custom LLM URL or
// invalid language codes.
func (c RuntimeConfig) Validate() error {
	if !c.Method.Valid() {
		return &ConfigError{Method: c.Method, Message: fmt.Sprintf("Unsupported translation method: %s", c.Method)}
	}
	switch {
	case c.Method == MethodLLM:
		if c.Provider.URL == "" {
			return &ConfigError{Method: c.Method, Field: "url", Message: "Please enter the LLM API URL"}
		}
	case HasConfigKey(c.Method, "apiKey") && c.Provider.APIKey == "":
		return &ConfigError{Method: c.Method, Field: "apiKey", Message: fmt.Sprintf("Please enter the %s API Key", c.Method.Label())}
	}
	if !IsValidLanguage(c.SourceLang) {
		return &ConfigError{Method: c.Method, Field: "sourceLanguage", Message: fmt.Sprintf("invalid source language %q", c.SourceLang)}
	}
	if c.TargetLang == "auto" || !IsValidLanguage(c.TargetLang) {
		return &ConfigError{Method: c.Method, Field: "targetLanguage", Message: fmt.Sprintf("invalid target language %q", c.TargetLang)}
	}
	return nil
}
