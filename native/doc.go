// Package native assembles the bridge's native library: a core WebAssembly
// module with unmangled exports and the wasm32 C calling convention.
//
// # Exports
//
//	greet()                            writes a greeting to stdout
//	run_demo()                         notify, print, callback, accept, produce, free
//	accept_string(ptr, len)            borrows caller text for the call only
//	produce_string() -> ptr            NUL-terminated, caller must free_string
//	free_string(ptr)                   releases a produce_string/echo_string buffer
//	alloc(len) -> ptr                  transient buffer for managed -> native text
//	dealloc(ptr)                       releases an alloc buffer
//	echo_string() -> ptr               copy of the last accepted text, caller frees
//	invoke_callback(a, b)              calls the registered managed callback
//	register_callback(slot) -> status  activates a callback table slot, once at bind
//	live_allocations() -> n            diagnostic
//	fault_count() -> n                 diagnostic
//
// # Imports
//
// Output goes through wasi_snapshot_preview1.fd_write on fd 1. The managed
// callback is imported as managed.callback (i32, i32) and placed in table
// slot 0 by an element segment; it is not callable until register_callback
// selects the slot. managed.notify () is called directly, once at the start
// of run_demo.
//
// # Memory
//
// Static data lives below 1 KiB, the echo area at 1 KiB, the heap from 4 KiB.
// Heap blocks carry an 8 byte header (capacity, state). Freed blocks enter a
// first-fit free list, so steady produce/free traffic does not grow memory.
//
// Releasing a pointer that is not a live heap block (foreign, misaligned or
// already freed) is a no-op that increments fault_count; nothing traps.
package native
