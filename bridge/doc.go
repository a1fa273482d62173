// Package bridge is the managed call surface of a native library.
//
// A surface is created by Runtime.Load from a declaration table. Every
// declared export is resolved against the compiled library, and its
// flattened signature checked, before anything runs: a library missing an
// export fails at load time with a MissingExportsError listing all of them,
// never at first use.
//
// # Lifecycle
//
//	Load    compile, resolve exports, check imports       -> unbound
//	Bind    instantiate, cache exports, register callback -> bound
//	Close   release the instance                          -> closed
//
// Calls on a surface that is not bound fail with errors.ErrUnbound. Bind
// succeeds once.
//
// # Signatures
//
// Declarations use WIT types. Scalars lower to one core value; a string
// parameter is borrowed and lowers to (ptr, len); a string result is an
// owned NUL-terminated buffer and lowers to a single pointer.
//
// # Faults
//
// A trap inside a native call becomes errors.ErrBoundaryFault naming the
// export, and the surface stays usable. A panicking callback handler is
// recovered before it reaches native frames. Ownership violations (double
// free, use after free, foreign pointer) are rejected on the managed side;
// with Config.Checked they panic instead.
//
// # Metrics
//
// Every runtime registers its metrics on Config.Registerer: calls, faults
// and latency per export, callbacks, recovered callback panics, outstanding
// native buffers and ownership violations.
package bridge
