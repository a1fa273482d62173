package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCall,
				Kind:   KindBoundaryFault,
				Export: "produce_string",
				Detail: "native call faulted",
			},
			contains: []string{"[call]", "boundary_fault", "at produce_string", "native call faulted"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseOwner,
				Kind:  KindDoubleFree,
			},
			contains: []string{"[owner]", "double_free"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMarshal,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[marshal]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := BoundaryFault("greet", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	tests := []struct {
		err    error
		target error
		name   string
		want   bool
	}{
		{DoubleFree(8), ErrDoubleFree, "double free", true},
		{UseAfterFree(8), ErrUseAfterFree, "use after free", true},
		{ForeignPointer(8), ErrForeignPointer, "foreign pointer", true},
		{Unbound("greet"), ErrUnbound, "unbound", true},
		{BoundaryFault("greet", nil), ErrBoundaryFault, "boundary fault", true},
		{DoubleFree(8), ErrForeignPointer, "different kind", false},
		{Unbound("greet"), errors.New("unbound"), "plain error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("trap")
	err := New(PhaseCall, KindBoundaryFault).
		Export("run_demo").
		Value(uint32(7)).
		Detail("faulted after %d calls", 3).
		Cause(cause).
		Build()

	if err.Phase != PhaseCall {
		t.Errorf("Phase = %s, want %s", err.Phase, PhaseCall)
	}
	if err.Kind != KindBoundaryFault {
		t.Errorf("Kind = %s, want %s", err.Kind, KindBoundaryFault)
	}
	if err.Export != "run_demo" {
		t.Errorf("Export = %q", err.Export)
	}
	if err.Value != uint32(7) {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Detail != "faulted after 3 calls" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}

	plain := New(PhaseLoad, KindMissingImport).Detail("no host provides env.abort").Build()
	if plain.Detail != "no host provides env.abort" {
		t.Errorf("Detail without args should be verbatim, got %q", plain.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("signature mismatch", func(t *testing.T) {
		err := SignatureMismatch("greet", "() -> ()", "(i32) -> ()")
		if err.Phase != PhaseLoad || err.Kind != KindSignatureMismatch {
			t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), "(i32) -> ()") {
			t.Errorf("message missing native signature: %s", err)
		}
	})

	t.Run("allocation", func(t *testing.T) {
		err := AllocationFailed("alloc", 1024)
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("detail should mention size: %s", err.Detail)
		}
	})

	t.Run("invalid utf8 preview is truncated", func(t *testing.T) {
		data := make([]byte, 100)
		for i := range data {
			data[i] = 0xff
		}
		err := InvalidUTF8("produce_string", data)
		if len(err.Detail) > len("invalid UTF-8 sequence: ")+64 {
			t.Errorf("preview not truncated: %s", err.Detail)
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMarshal, 65530, 10)
		if err.Value != uint32(65530) {
			t.Errorf("Value = %v", err.Value)
		}
	})

	t.Run("wrap", func(t *testing.T) {
		cause := errors.New("compile failed")
		err := Wrap(PhaseLoad, KindInvalidInput, cause, "compile native library")
		if !errors.Is(err, cause) {
			t.Error("wrapped cause lost")
		}
	})
}

func TestMissingExportsError(t *testing.T) {
	t.Run("lists every export", func(t *testing.T) {
		err := NewMissingExportsError("libbridge", []string{"free_string", "produce_string"})
		msg := err.Error()
		for _, s := range []string{"libbridge", "2", "free_string", "produce_string"} {
			if !strings.Contains(msg, s) {
				t.Errorf("message %q missing %q", msg, s)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMissingExportsError("libbridge", nil)
		if !strings.Contains(err.Error(), "no exports specified") {
			t.Errorf("unexpected message: %s", err)
		}
	})

	t.Run("is", func(t *testing.T) {
		var err error = NewMissingExportsError("libbridge", []string{"greet"})
		if !errors.Is(err, &MissingExportsError{}) {
			t.Error("should match MissingExportsError")
		}
		if !errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindMissingExport}) {
			t.Error("should match load/missing_export")
		}
		if errors.Is(err, ErrUnbound) {
			t.Error("should not match unbound")
		}
	})
}
