// Package testutil provides helpers shared by HTTP handler tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// LoopbackAddr is a RemoteAddr accepted by loopback-only debug routes.
const LoopbackAddr = "127.0.0.1:40000"

// Serve runs one bodyless request through h and returns the recording.
func Serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	return ServeFrom(h, method, target, "")
}

// ServeFrom is Serve with the request's RemoteAddr set to remoteAddr.
func ServeFrom(h http.Handler, method, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertContentType checks that w's Content-Type starts with want.
func AssertContentType(t testing.TB, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, want) {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

// DecodeJSON decodes w's body into out and stops the test if it can't.
func DecodeJSON(t testing.TB, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response body %q: %v", w.Body.String(), err)
	}
}
