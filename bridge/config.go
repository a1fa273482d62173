package bridge

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultMemoryLimitPages caps native memory at 16MB.
	DefaultMemoryLimitPages = 256

	// DefaultMaxTextLen bounds text decoded from native memory.
	DefaultMaxTextLen = 1 << 20
)

// CallbackFunc handles a native-to-managed callback.
type CallbackFunc func(a, b uint32)

// NotifyFunc handles a managed.notify call from native code.
type NotifyFunc func()

// Config holds configuration for a bridge runtime
type Config struct {
	// Stdout receives native output and the default callback's output.
	// Defaults to os.Stdout.
	Stdout io.Writer

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Registerer receives the bridge metrics. Defaults to a private registry.
	Registerer prometheus.Registerer

	// Callback replaces the default handler, which prints
	// "managed num: A, B". Every invocation is recorded either way.
	Callback CallbackFunc

	// Notify replaces the default handler, which prints
	// "managed called from native".
	Notify NotifyFunc

	// MemoryLimitPages sets the maximum native memory in pages (64KB each).
	MemoryLimitPages uint32

	// MaxTextLen bounds text in both directions, in bytes.
	MaxTextLen uint32

	// Checked turns ownership violations into panics.
	Checked bool
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.Registerer == nil {
		out.Registerer = prometheus.NewRegistry()
	}
	if out.MemoryLimitPages == 0 {
		out.MemoryLimitPages = DefaultMemoryLimitPages
	}
	if out.MaxTextLen == 0 {
		out.MaxTextLen = DefaultMaxTextLen
	}
	return out
}
