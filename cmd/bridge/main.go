package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/bridge"
	"github.com/wippyai/wasm-bridge/demo"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List the resolved native bindings and exit")
		verbose     = flag.Bool("v", false, "Log boundary calls to stderr")
		checked     = flag.Bool("checked", false, "Panic on ownership violations")
		maxText     = flag.Uint("max-text", bridge.DefaultMaxTextLen, "Maximum text length in bytes")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := &bridge.Config{
		Logger:     logger,
		Checked:    *checked,
		MaxTextLen: uint32(*maxText),
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, os.Stdout, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func run(cfg *bridge.Config, out io.Writer, listOnly bool) error {
	ctx := context.Background()

	cfg.Stdout = out
	rt, s, err := demo.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open native library: %w", err)
	}
	defer rt.Close(ctx)

	if listOnly {
		printBindings(out, s.Bindings())
		return nil
	}

	return demo.Run(ctx, s, out)
}

func printBindings(w io.Writer, bindings []bridge.Binding) {
	fmt.Fprintf(w, "Native bindings: %d\n\n", len(bindings))
	width := 0
	for _, b := range bindings {
		width = max(width, len(b.Name))
	}
	for _, b := range bindings {
		pad := strings.Repeat(" ", width-len(b.Name))
		fmt.Fprintf(w, "  %s%s  %-28s %-24s %s\n", b.Name, pad, b.Signature(), b.Native, b.Ownership)
	}
}
