package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

type staticUUID struct{}

func (staticUUID) Generate() string { return "test-cid" }

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	return NewRouter(Config{
		UUID:        staticUUID{},
		Instrument:  instrument.NewNoop(),
		ServiceKeys: []string{"svc-key-1", "svc-key-2"},
	})
}

func doRequest(r *Router, method, path, key, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	r := newTestRouter(t)
	r.POST("/api/v1/echo", func(req *Request) (any, error) {
		return map[string]string{"value": "ok"}, nil
	})

	rec := doRequest(r, http.MethodPost, "/api/v1/echo", "svc-key-1", "{}")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.Data["value"] != "ok" {
		t.Fatalf("expected data.value ok, got %q", resp.Data["value"])
	}
}

func TestRouter_BusinessErrorEnvelope(t *testing.T) {
	r := newTestRouter(t)
	r.POST("/api/v1/fail", func(req *Request) (any, error) {
		return nil, goerror.NewBusiness("Invalid verification code. Please try again.", goerror.CodeUnauthorized)
	})

	rec := doRequest(r, http.MethodPost, "/api/v1/fail", "svc-key-1", "{}")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.Message != "Invalid verification code. Please try again." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestRouter_UnknownErrorIsInternal(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/api/v1/boom", func(req *Request) (any, error) {
		return nil, http.ErrBodyNotAllowed
	})

	rec := doRequest(r, http.MethodGet, "/api/v1/boom", "svc-key-1", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestRouter_ServiceKeyRequired(t *testing.T) {
	r := newTestRouter(t)
	r.POST("/api/v1/secure", func(req *Request) (any, error) {
		return map[string]string{}, nil
	})

	t.Run("missing key", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/v1/secure", "", "{}")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/v1/secure", "not-a-key", "{}")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("second configured key", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/v1/secure", "svc-key-2", "{}")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestRouter_RootIsPublic(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_PanicRecovered(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/api/v1/panic", func(req *Request) (any, error) {
		panic("kaboom")
	})

	rec := doRequest(r, http.MethodGet, "/api/v1/panic", "svc-key-1", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestRouter_CorrelationIDGenerated(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/", "", "")
	if got := rec.Header().Get(HeaderCorrelationID); got != "test-cid" {
		t.Fatalf("expected generated correlation id, got %q", got)
	}
}

func TestRouter_CorrelationIDPropagated(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "abc-123")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderCorrelationID); got != "abc-123" {
		t.Fatalf("expected correlation id abc-123, got %q", got)
	}
}

func TestRequest_DecodeBody(t *testing.T) {
	r := newTestRouter(t)

	type payload struct {
		Identity string `json:"identity"`
	}

	var decoded payload
	r.POST("/api/v1/decode", func(req *Request) (any, error) {
		if err := req.DecodeBody(&decoded); err != nil {
			return nil, err
		}
		return map[string]string{}, nil
	})

	t.Run("valid body", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/v1/decode", "svc-key-1", `{"identity":"alice@example.com"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if decoded.Identity != "alice@example.com" {
			t.Fatalf("expected decoded identity, got %q", decoded.Identity)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/v1/decode", "svc-key-1", `{"identity":"a","extra":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}
