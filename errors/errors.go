package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge lifecycle the error occurred
type Phase string

const (
	PhaseBuild   Phase = "build"   // native module assembly
	PhaseLoad    Phase = "load"    // compilation and export resolution
	PhaseBind    Phase = "bind"    // instantiation and callback registration
	PhaseCall    Phase = "call"    // managed to native calls
	PhaseHost    Phase = "host"    // native to managed callbacks
	PhaseMarshal Phase = "marshal" // text encoding and decoding
	PhaseOwner   Phase = "owner"   // buffer ownership transfer
)

// Kind categorizes the error
type Kind string

const (
	KindMissingExport     Kind = "missing_export"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindMissingImport     Kind = "missing_import"
	KindUnbound           Kind = "unbound"
	KindAlreadyBound      Kind = "already_bound"
	KindBoundaryFault     Kind = "boundary_fault"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindAllocation        Kind = "allocation"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindTooLarge          Kind = "too_large"
	KindDoubleFree        Kind = "double_free"
	KindUseAfterFree      Kind = "use_after_free"
	KindForeignPointer    Kind = "foreign_pointer"
	KindInvalidInput      Kind = "invalid_input"
	KindInstantiation     Kind = "instantiation"
)

// Sentinels for errors.Is checks. Matching is by phase and kind.
var (
	ErrUnbound        = &Error{Phase: PhaseCall, Kind: KindUnbound}
	ErrBoundaryFault  = &Error{Phase: PhaseCall, Kind: KindBoundaryFault}
	ErrDoubleFree     = &Error{Phase: PhaseOwner, Kind: KindDoubleFree}
	ErrUseAfterFree   = &Error{Phase: PhaseOwner, Kind: KindUseAfterFree}
	ErrForeignPointer = &Error{Phase: PhaseOwner, Kind: KindForeignPointer}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Export string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Export != "" {
		b.WriteString(" at ")
		b.WriteString(e.Export)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Export sets the export the error refers to
func (b *Builder) Export(name string) *Builder {
	b.err.Export = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// SignatureMismatch reports a declaration whose flattened signature differs
// from the native export.
func SignatureMismatch(export, want, got string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSignatureMismatch,
		Export: export,
		Detail: fmt.Sprintf("declared %s, native exports %s", want, got),
	}
}

// Unbound reports a call on a surface that is not (or no longer) bound.
func Unbound(export string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindUnbound,
		Export: export,
		Detail: "surface is not bound",
	}
}

// BoundaryFault wraps a trap raised inside a native export.
func BoundaryFault(export string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindBoundaryFault,
		Export: export,
		Detail: "native call faulted",
		Cause:  cause,
	}
}

// OutOfBounds reports a memory access outside native linear memory.
func OutOfBounds(phase Phase, ptr, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset=%d, length=%d", ptr, length),
		Value:  ptr,
	}
}

// AllocationFailed reports that native memory could not satisfy a request.
func AllocationFailed(export string, size uint32) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindAllocation,
		Export: export,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(export string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindInvalidUTF8,
		Export: export,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// DoubleFree reports a second release of the same native buffer.
func DoubleFree(ptr uint32) *Error {
	return &Error{
		Phase:  PhaseOwner,
		Kind:   KindDoubleFree,
		Detail: fmt.Sprintf("buffer 0x%x already released", ptr),
		Value:  ptr,
	}
}

// UseAfterFree reports access to a native buffer after its release.
func UseAfterFree(ptr uint32) *Error {
	return &Error{
		Phase:  PhaseOwner,
		Kind:   KindUseAfterFree,
		Detail: fmt.Sprintf("buffer 0x%x used after release", ptr),
		Value:  ptr,
	}
}

// ForeignPointer reports a release of a pointer the caller never owned.
func ForeignPointer(ptr uint32) *Error {
	return &Error{
		Phase:  PhaseOwner,
		Kind:   KindForeignPointer,
		Detail: fmt.Sprintf("pointer 0x%x is not owned by the caller", ptr),
		Value:  ptr,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindInstantiation,
		Detail: "instantiate native library",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExportsError is returned at load time when the native library lacks
// one or more declared exports. All missing names are reported together.
type MissingExportsError struct {
	Library string
	Exports []string
}

// NewMissingExportsError creates an error for the given missing export names
func NewMissingExportsError(library string, exports []string) *MissingExportsError {
	return &MissingExportsError{
		Library: library,
		Exports: append([]string(nil), exports...),
	}
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[load] missing_export: %s lacks %d declared export(s):", e.Library, len(e.Exports)))
	for _, name := range e.Exports {
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingExportsError:
		return true
	case *Error:
		return t.Phase == PhaseLoad && t.Kind == KindMissingExport
	}
	return false
}
