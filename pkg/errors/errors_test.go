package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMissingKey, "file %s has no %s column", "entities.csv", "entity_id")

	if err.Code != ErrCodeMissingKey {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeMissingKey)
	}
	want := "MISSING_KEY: file entities.csv has no entity_id column"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := Wrap(ErrCodeIO, cause, "read %s", "participants.csv")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	want := "IO_ERROR: read participants.csv: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeMissingKey, "msg"), ErrCodeMissingKey, true},
		{"different code", New(ErrCodeIO, "msg"), ErrCodeMissingKey, false},
		{"wrapped in fmt", fmt.Errorf("outer: %w", New(ErrCodeRender, "msg")), ErrCodeRender, true},
		{"plain error", stderrors.New("plain"), ErrCodeIO, false},
		{"nil error", nil, ErrCodeIO, false},
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
	if got := GetCode(New(ErrCodeEncode, "bad payload")); got != ErrCodeEncode {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeEncode)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "page width must be positive")
	if got := UserMessage(err); got != "page width must be positive" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage() = %q", got)
	}
}
