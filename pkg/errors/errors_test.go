package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeReferenceNotFound, "Reference not found: %q.", "ApiNote")

	if err.Code != ErrCodeReferenceNotFound || err.Cause != nil {
		t.Errorf("New() = %+v", err)
	}
	want := `REFERENCE_NOT_FOUND: Reference not found: "ApiNote".`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrCodeFileNotFound, fs.ErrNotExist, "File %s does not exist. Called from %s", "note.md", "p.A")

	want := "FILE_NOT_FOUND: File note.md does not exist. Called from p.A: file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if errors.Unwrap(err) != fs.ErrNotExist {
		t.Errorf("Unwrap() = %v, want fs.ErrNotExist", errors.Unwrap(err))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false, want true")
	}
}

func TestIs(t *testing.T) {
	cyclic := New(ErrCodeCircularReference, "Circular references detected in @include statements")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", cyclic, ErrCodeCircularReference, true},
		{"other code", cyclic, ErrCodeSelfReference, false},
		{"outer code of a wrap", Wrap(ErrCodeParse, cyclic, "include"), ErrCodeParse, true},
		{"plain error", errors.New("plain"), ErrCodeParse, false},
		{"nil", nil, ErrCodeParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeUnsupportedTarget, "type alias"), ErrCodeUnsupportedTarget},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeSelfReference, "Self-reference detected."),
			expected: "Self-reference detected.",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessageWrapped(t *testing.T) {
	err := Wrap(ErrCodeFileNotFound, New(ErrCodeInvalidPath, "bad path"), "read docs/intro.md")
	want := "read docs/intro.md: bad path"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %v, want %v", got, want)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"capability", New(ErrCodeCapability, "no extension"), true},
		{"internal", New(ErrCodeInternal, "tag mismatch"), true},
		{"parse", New(ErrCodeParse, "unbalanced"), false},
		{"wrapped capability", Wrap(ErrCodeInvalidInput, New(ErrCodeCapability, "x"), "outer"), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.expected {
				t.Errorf("IsFatal() = %v, want %v", got, tt.expected)
			}
		})
	}
}
