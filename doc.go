// Package linetl translates ordered lines of text through remote translation
// providers.
//
// Linetl drives traditional machine translation APIs (Google, DeepL, Azure,
// ...) and LLM chat-completion APIs (OpenAI, DeepSeek, Gemini, ...) with
// caching, bounded concurrency, retry with backoff, run-wide cancellation on
// authentication failures and context-window batching for LLM providers. The
// output always has one entry per input line, in input order.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/linetl"
//	    "github.com/ZaguanLabs/linetl/cache"
//	    "github.com/ZaguanLabs/linetl/provider"
//	)
//
//	func main() {
//	    t := linetl.NewTranslator(provider.NewRegistry(),
//	        linetl.WithCache(cache.NewInMemoryCache(3600)),
//	    )
//
//	    cfg := linetl.DefaultRuntimeConfig(linetl.MethodDeepSeek)
//	    cfg.Provider.APIKey = os.Getenv("DEEPSEEK_API_KEY")
//	    cfg.TargetLang = "es"
//
//	    lines, err := t.TranslateLines(context.Background(),
//	        []string{"Hello", "World"}, cfg,
//	        linetl.WithDocumentType(linetl.DocumentSubtitle),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(lines) // [Hola Mundo]
//	}
package linetl
