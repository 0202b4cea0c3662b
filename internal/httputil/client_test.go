package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)

	if client.Client != customClient {
		t.Error("expected custom client to be wrapped")
	}
}

func TestStandardClient_NilUsesDefault(t *testing.T) {
	client := NewStandardClient(nil)
	if client.Client != http.DefaultClient {
		t.Error("expected http.DefaultClient")
	}
}

func TestStandardClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewStandardClient(nil)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("got body %q", string(body))
	}
}

func TestGetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"ocupados": 3}`))
	}))
	defer server.Close()

	var out struct {
		Ocupados int `json:"ocupados"`
	}
	if err := GetJSON(context.Background(), NewStandardClient(nil), server.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Ocupados != 3 {
		t.Errorf("Ocupados = %d, want 3", out.Ocupados)
	}
}

func TestGetJSON_StatusError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusServiceUnavailable, "down")

	var out map[string]interface{}
	err := GetJSON(context.Background(), mock, "http://parking.local/api/estado", &out)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T, want *StatusError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
}

func TestGetJSON_TransportError(t *testing.T) {
	mock := NewMockHTTPClient()
	boom := errors.New("connection refused")
	mock.AddErrorResponse(boom)

	var out map[string]interface{}
	err := GetJSON(context.Background(), mock, "http://parking.local/api/estado", &out)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		t.Error("transport error must not match ErrUnexpectedStatus")
	}
}

func TestGetJSON_DecodeError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "<html>")

	var out map[string]interface{}
	if err := GetJSON(context.Background(), mock, "http://parking.local/x", &out); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetJSON_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out map[string]interface{}
	err := GetJSON(ctx, NewStandardClient(nil), server.URL, &out)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestMockHTTPClient_MultipleResponses(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "first").AddResponse(http.StatusAccepted, "second")

	for i, want := range []int{http.StatusOK, http.StatusAccepted, http.StatusOK} {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		resp, err := mock.Do(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != want {
			t.Errorf("request %d: got %d, want %d", i, resp.StatusCode, want)
		}
	}
}

func TestMockHTTPClient_PathResponses(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddPathResponse("/api/vehiculos", http.StatusOK, "[]")
	mock.AddPathResponse("/api/estado", http.StatusOK, "{}")
	mock.AddPathError("/api/estado", errors.New("reset"))

	do := func(path string) (*http.Response, error) {
		req, _ := http.NewRequest(http.MethodGet, "http://parking.local"+path, nil)
		return mock.Do(req)
	}

	resp, err := do("/api/estado")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "{}" {
		t.Errorf("estado body = %q", body)
	}

	resp, err = do("/api/vehiculos")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("vehiculos body = %q", body)
	}

	if _, err := do("/api/estado"); err == nil {
		t.Error("expected queued path error")
	}
	if mock.PathCount("/api/estado") != 2 {
		t.Errorf("PathCount = %d, want 2", mock.PathCount("/api/estado"))
	}
}

func TestMockHTTPClient_DefaultError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DefaultError = errors.New("default error")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if _, err := mock.Do(req); err == nil || err.Error() != "default error" {
		t.Errorf("got %v, want default error", err)
	}
}

func TestMockHTTPClient_DoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody}, nil
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("got %d, want 418", resp.StatusCode)
	}
}

func TestMockHTTPClient_GetRequestAndReset(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "x")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/a", nil)
	_, _ = mock.Do(req)

	if got := mock.GetRequest(0); got == nil || got.URL.Path != "/a" {
		t.Errorf("GetRequest(0) = %v", got)
	}
	if mock.GetRequest(5) != nil || mock.GetRequest(-1) != nil {
		t.Error("out-of-range GetRequest should be nil")
	}

	mock.Reset()
	if mock.RequestCount() != 0 || len(mock.Responses) != 0 {
		t.Error("Reset did not clear state")
	}
}

func TestMockHTTPClient_DefaultResponse(t *testing.T) {
	mock := NewMockHTTPClient()
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got %d, want 200", resp.StatusCode)
	}
}
