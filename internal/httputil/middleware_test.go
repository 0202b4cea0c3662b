package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/parking.report/internal/monitoring"
)

func TestLoggingMiddleware(t *testing.T) {
	rec := &monitoring.Recorder{}
	prev := monitoring.Logf
	monitoring.SetLogger(rec.Logf)
	defer monitoring.SetLogger(prev)

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/view?x=1", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	lines := rec.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "418")
	assert.Contains(t, lines[0], "GET")
	assert.Contains(t, lines[0], "/api/view?x=1")
}

func TestStatusCodeColor(t *testing.T) {
	assert.True(t, strings.HasPrefix(statusCodeColor(200), colorBoldGreen))
	assert.True(t, strings.HasPrefix(statusCodeColor(302), colorYellow))
	assert.True(t, strings.HasPrefix(statusCodeColor(404), colorBoldRed))
	assert.True(t, strings.HasPrefix(statusCodeColor(503), colorBoldRed))
	assert.Equal(t, "101", statusCodeColor(101))
}

func TestLoggingResponseWriter_HijackUnsupported(t *testing.T) {
	lrw := &loggingResponseWriter{httptest.NewRecorder(), http.StatusOK}
	_, _, err := lrw.Hijack()
	assert.Error(t, err)
}
