package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNodeParented, "node still has a parent")

	if err == nil {
		t.Fatal("New should return non-nil error")
	}

	if err.Code != ErrCodeNodeParented {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNodeParented)
	}

	if err.Message != "node still has a parent" {
		t.Errorf("Message = %v, want 'node still has a parent'", err.Message)
	}

	if err.Underlying != nil {
		t.Error("Underlying should be nil for New error")
	}

	if len(err.Stack) == 0 {
		t.Error("Stack should be captured")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("tty not available")
	err := Wrap(underlying, ErrCodeBackendInit, "failed to initialize terminal backend")

	if err == nil {
		t.Fatal("Wrap should return non-nil error")
	}

	if err.Underlying != underlying {
		t.Error("Underlying should be the wrapped error")
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "whatever"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeBufferSize, "buffer dimensions must be positive").
		WithContext("width", 0).
		WithContext("height", 24)

	msg := err.Error()
	if !strings.Contains(msg, "[BUFFER_SIZE]") {
		t.Errorf("Error() = %q, want code prefix", msg)
	}
	if !strings.Contains(msg, "buffer dimensions must be positive") {
		t.Errorf("Error() = %q, want message", msg)
	}
	if !strings.Contains(msg, "width: 0") {
		t.Errorf("Error() = %q, want context", msg)
	}
}

func TestErrorFormatWithUnderlying(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(underlying, ErrCodeConfigLoad, "could not read config")

	msg := err.Error()
	if !strings.HasSuffix(msg, ": boom") {
		t.Errorf("Error() = %q, want underlying suffix", msg)
	}
}

func TestIsInvariant(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeNodeParented, true},
		{ErrCodeNodeCycle, true},
		{ErrCodeBufferSize, true},
		{ErrCodeNodeDestroyed, true},
		{ErrCodeBackendInit, false},
		{ErrCodePoolExhausted, false},
		{ErrCodeConfigLoad, false},
	}

	for _, tc := range cases {
		if got := New(tc.code, "x").IsInvariant(); got != tc.want {
			t.Errorf("IsInvariant(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := New(ErrCodeNodeCycle, "node cannot be its own ancestor")

	if !IsCode(err, ErrCodeNodeCycle) {
		t.Error("IsCode should match the error's code")
	}

	if IsCode(err, ErrCodeNodeParented) {
		t.Error("IsCode should not match a different code")
	}

	if IsCode(nil, ErrCodeNodeCycle) {
		t.Error("IsCode(nil) should be false")
	}

	if IsCode(errors.New("plain"), ErrCodeNodeCycle) {
		t.Error("IsCode should be false for non-structured errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodePoolExhausted, "no free slots")); got != ErrCodePoolExhausted {
		t.Errorf("GetCode = %v, want %v", got, ErrCodePoolExhausted)
	}

	if got := GetCode(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("GetCode(plain) = %v, want %v", got, ErrCodeInternal)
	}

	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestRemediation(t *testing.T) {
	err := New(ErrCodeNodeParented, "destroy requires a detached node").
		WithRemediation("call parent.RemoveChild(node) before Destroy")

	if len(err.Remediation) != 1 {
		t.Fatalf("Remediation length = %d, want 1", len(err.Remediation))
	}
}
