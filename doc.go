// Package wasmbridge is a minimal bidirectional call bridge between Go and a
// natively compiled library.
//
// The native library is a core WebAssembly module with unmangled exports and
// the wasm32 C calling convention, executed by wazero. Go is the managed
// side: it declares every native entry point up front, resolves the whole
// table at load time, registers one callback at bind time and marshals text
// across the boundary with explicit ownership.
//
// # Architecture Overview
//
//	wasmbridge/          Root package with Memory and Allocator interfaces
//	├── bridge/          Managed call surface: declarations, binding, calls, ownership
//	├── native/          The native library, assembled as a wasm module
//	├── wasm/            Module model, binary encoder and instruction builder
//	├── errors/          Structured error types
//	├── demo/            Console demo driving the bridge end to end
//	└── cmd/bridge/      CLI
//
// # Quick Start
//
//	rt, err := bridge.New(ctx, &bridge.Config{Stdout: os.Stdout})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	s, err := rt.Load(ctx, native.Name, native.Build(), bridge.Declarations)
//	if err != nil {
//	    log.Fatal(err) // missing exports are reported here, before any call
//	}
//	if err := s.Bind(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	s.Greet(ctx)                          // "Hello, from native!"
//	s.AcceptString(ctx, "hello")          // "native print: hello"
//	text, err := s.ProduceString(ctx)     // "string from native", already freed
//
// # Ownership
//
// Text passed to native is borrowed for the duration of the call: the bridge
// allocates a transient buffer, copies the bytes and releases it after the
// call returns. Text returned by native is owned by the caller and released
// exactly once. ProduceString handles that automatically; ProduceBuffer hands
// out an OwnedText for manual control, and the ownership ledger rejects a
// second release.
//
// # Thread Safety
//
// Runtime is safe for concurrent use. Surface is NOT thread-safe and should
// be used by a single goroutine.
package wasmbridge
