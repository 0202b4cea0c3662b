package monitoring

import (
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")

	if !called {
		t.Error("Custom logger was not called")
	}

	// Now set to nil and verify it doesn't call our logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestRecorder(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	rec := &Recorder{}
	SetLogger(rec.Logf)
	Logf("status fetch failed: %v", "timeout")
	Logf("second")

	lines := rec.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "status fetch failed: timeout" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !rec.Contains("timeout") {
		t.Error("Contains(timeout) = false")
	}
	if rec.Contains("missing") {
		t.Error("Contains(missing) = true")
	}
}
