// Package demo drives the bridge end to end and prints the fixed console
// sequence used as the bridge's smoke test.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/wippyai/wasm-bridge/bridge"
	"github.com/wippyai/wasm-bridge/native"
)

// Text printed by Run.
const (
	Banner     = "Hello World!"
	Accepted   = "this is mono string"
	PersonName = "c#Person"
)

// Run prints, in order: the banner, the native greeting, the native demo
// sequence, the accepted string echoed by native, the string produced by
// native and the person's greeting. w must be the writer the surface's
// native output goes to, or the order is lost.
func Run(ctx context.Context, s *bridge.Surface, w io.Writer) error {
	if _, err := fmt.Fprintln(w, Banner); err != nil {
		return err
	}
	if err := s.Greet(ctx); err != nil {
		return err
	}
	if err := s.RunDemo(ctx); err != nil {
		return err
	}
	if err := s.AcceptString(ctx, Accepted); err != nil {
		return err
	}

	text, err := s.ProduceString(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "native string: %s\n", text); err != nil {
		return err
	}

	return NewPerson(PersonName).Greet(w)
}

// Open creates a runtime, loads the native library and binds it.
func Open(ctx context.Context, cfg *bridge.Config) (*bridge.Runtime, *bridge.Surface, error) {
	rt, err := bridge.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	s, err := rt.Load(ctx, native.Name, native.Build(), bridge.Declarations)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, err
	}
	if err := s.Bind(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, nil, err
	}
	return rt, s, nil
}
