package cache

import "context"

// Nop is a Store that remembers nothing. Every read is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }
func (Nop) Set(context.Context, string, string) {}
func (Nop) Delete(context.Context, string) {}
func (Nop) Clear(context.Context) int { return 0 }
func (Nop) Count(context.Context) int { return 0 }
func (Nop) Entries(context.Context) (map[string]string, error) { return map[string]string{}, nil }
func (Nop) Close() error { return nil }

var (
	_ Store  = Nop{}
	_ Lister = Nop{}
)
