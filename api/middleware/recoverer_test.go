package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/trailteams-backend/api/responses"
)

func TestRequestIDKeepsWellFormedInboundID(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = responses.RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "lb-1234")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "lb-1234" || rec.Header().Get(RequestIDHeader) != "lb-1234" {
		t.Fatalf("expected inbound id kept, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces"+strings.Repeat("x", 80))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen == "" || strings.Contains(seen, " ") {
		t.Fatalf("expected generated id, got %q", seen)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := RequestID(nil)(Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	var body responses.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" || body.Error.RequestID == "" {
		t.Fatalf("unexpected body %+v", body.Error)
	}
	if strings.Contains(body.Error.Message, "boom") {
		t.Fatalf("panic value leaked: %q", body.Error.Message)
	}
}
