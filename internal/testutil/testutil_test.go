package testutil

import (
	"fmt"
	"net/http"
	"runtime"
	"testing"
)

// fakeTB records failures instead of failing the real test.
type fakeTB struct {
	testing.TB
	errors []string
	fatal  bool
}

func (f *fakeTB) Helper() {}

func (f *fakeTB) Errorf(format string, args ...interface{}) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeTB) Fatalf(format string, args ...interface{}) {
	f.Errorf(format, args...)
	f.fatal = true
	runtime.Goexit()
}

// run calls fn on a fresh fakeTB in its own goroutine so Fatalf can exit it.
func run(fn func(tb *fakeTB)) *fakeTB {
	tb := &fakeTB{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(tb)
	}()
	<-done
	return tb
}

var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/json":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ocupados": 12}`))
	case "/addr":
		_, _ = w.Write([]byte(r.RemoteAddr))
	default:
		http.NotFound(w, r)
	}
})

func TestServe(t *testing.T) {
	w := Serve(echo, http.MethodGet, "/json")
	AssertStatusCode(t, w.Code, http.StatusOK)
	AssertContentType(t, w, "application/json")

	var body struct {
		Ocupados int `json:"ocupados"`
	}
	DecodeJSON(t, w, &body)
	if body.Ocupados != 12 {
		t.Errorf("ocupados = %d, want 12", body.Ocupados)
	}

	AssertStatusCode(t, Serve(echo, http.MethodGet, "/nope").Code, http.StatusNotFound)
}

func TestServeFrom(t *testing.T) {
	w := ServeFrom(echo, http.MethodGet, "/addr", LoopbackAddr)
	if w.Body.String() != LoopbackAddr {
		t.Errorf("RemoteAddr = %q", w.Body.String())
	}
}

func TestAssertStatusCode_Mismatch(t *testing.T) {
	tb := run(func(tb *fakeTB) { AssertStatusCode(tb, http.StatusOK, http.StatusBadRequest) })
	if len(tb.errors) != 1 || tb.fatal {
		t.Errorf("errors = %v, fatal = %v", tb.errors, tb.fatal)
	}

	tb = run(func(tb *fakeTB) { AssertStatusCode(tb, http.StatusOK, http.StatusOK) })
	if len(tb.errors) != 0 {
		t.Errorf("unexpected errors %v", tb.errors)
	}
}

func TestAssertContentType_Mismatch(t *testing.T) {
	w := Serve(echo, http.MethodGet, "/json")
	tb := run(func(tb *fakeTB) { AssertContentType(tb, w, "text/html") })
	if len(tb.errors) != 1 {
		t.Errorf("errors = %v", tb.errors)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	w := Serve(echo, http.MethodGet, "/addr")
	reached := false
	tb := run(func(tb *fakeTB) {
		var out map[string]interface{}
		DecodeJSON(tb, w, &out)
		reached = true
	})
	if !tb.fatal || reached {
		t.Errorf("fatal = %v, reached = %v", tb.fatal, reached)
	}
}
