package bridge

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"

	wasmbridge "github.com/wippyai/wasm-bridge"
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
)

// AcceptString lends text to native for the duration of one call: it is
// copied into a transient native buffer that is released after the call.
func (s *Surface) AcceptString(ctx context.Context, text string) error {
	if s.state != stateBound {
		return errors.Unbound(native.ExportAcceptString)
	}
	if uint64(len(text)) > uint64(s.cfg.MaxTextLen) {
		return errors.New(errors.PhaseMarshal, errors.KindTooLarge).
			Export(native.ExportAcceptString).
			Detail("text of %d bytes exceeds %d", len(text), s.cfg.MaxTextLen).
			Build()
	}
	if !utf8.ValidString(text) {
		return errors.InvalidUTF8(native.ExportAcceptString, []byte(text))
	}
	// Text coming back from native is NUL-terminated.
	if i := strings.IndexByte(text, 0); i >= 0 {
		return errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Export(native.ExportAcceptString).
			Value(i).
			Detail("text contains NUL at byte %d", i).
			Build()
	}

	alloc := s.Allocator()
	size := uint32(len(text))

	ptr, err := alloc.Alloc(ctx, size)
	if err != nil {
		return err
	}

	err = s.mem.Write(ptr, []byte(text))
	if err == nil {
		_, err = s.call(ctx, native.ExportAcceptString, api.EncodeU32(ptr), api.EncodeU32(size))
	}

	if ferr := alloc.Free(ctx, ptr); err == nil {
		err = ferr
	}
	return err
}

// ProduceString returns native text as a Go string. The native buffer is
// decoded and then freed, even when decoding fails.
func (s *Surface) ProduceString(ctx context.Context) (string, error) {
	return s.takeString(ctx, native.ExportProduceString)
}

// EchoString returns a copy of the last text native accepted.
func (s *Surface) EchoString(ctx context.Context) (string, error) {
	return s.takeString(ctx, native.ExportEchoString)
}

// ProduceBuffer returns native text without decoding it. The caller owns
// the buffer and must Free it.
func (s *Surface) ProduceBuffer(ctx context.Context) (*OwnedText, error) {
	return s.produceOwned(ctx, native.ExportProduceString)
}

// EchoBuffer is the manual-ownership form of EchoString.
func (s *Surface) EchoBuffer(ctx context.Context) (*OwnedText, error) {
	return s.produceOwned(ctx, native.ExportEchoString)
}

func (s *Surface) takeString(ctx context.Context, export string) (string, error) {
	o, err := s.produceOwned(ctx, export)
	if err != nil {
		return "", err
	}

	text, derr := o.Decode()
	ferr := o.Free(ctx)
	if derr != nil {
		return "", derr
	}
	return text, ferr
}

func (s *Surface) decodeText(export string, ptr uint32) (string, error) {
	data, err := s.mem.CString(ptr, s.cfg.MaxTextLen)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Export = export
		}
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(export, data)
	}
	return string(data), nil
}

// Allocator returns the library's transient buffer allocator.
func (s *Surface) Allocator() wasmbridge.Allocator {
	return nativeAllocator{s: s}
}

type nativeAllocator struct {
	s *Surface
}

func (a nativeAllocator) Alloc(ctx context.Context, size uint32) (uint32, error) {
	ptr, err := a.s.callU32(ctx, native.ExportAlloc, api.EncodeU32(size))
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, errors.AllocationFailed(native.ExportAlloc, size)
	}
	return ptr, nil
}

func (a nativeAllocator) Free(ctx context.Context, ptr uint32) error {
	_, err := a.s.call(ctx, native.ExportDealloc, api.EncodeU32(ptr))
	return err
}
