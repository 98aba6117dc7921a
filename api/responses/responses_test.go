package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", w.Code, w.Body.String())
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	tests := []struct {
		code    pkgerrors.Code
		status  int
		message string
		details bool
	}{
		{pkgerrors.CodeValidation, http.StatusBadRequest, "team name too long", true},
		{pkgerrors.CodeUnauthorized, http.StatusUnauthorized, "missing credentials", false},
		{pkgerrors.CodeForbidden, http.StatusForbidden, "only the team owner can do this", true},
		{pkgerrors.CodeNotFound, http.StatusNotFound, "team not found", false},
		{pkgerrors.CodeConflict, http.StatusConflict, "already a member", false},
		{pkgerrors.CodeStateConflict, http.StatusUnprocessableEntity, "membership is not pending", true},
		{pkgerrors.CodeDependency, http.StatusServiceUnavailable, "storage unavailable", true},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		err := pkgerrors.New(tt.code, tt.message).WithDetails(map[string]any{"team_id": "t-1"})
		WriteError(context.Background(), nil, w, err)

		if w.Code != tt.status {
			t.Fatalf("%s: expected status %d got %d", tt.code, tt.status, w.Code)
		}
		var body ErrorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.code, err)
		}
		if body.Error.Code != string(tt.code) || body.Error.Message != tt.message {
			t.Fatalf("%s: unexpected error body %+v", tt.code, body.Error)
		}
		if (body.Error.Details != nil) != tt.details {
			t.Fatalf("%s: details visibility mismatch: %v", tt.code, body.Error.Details)
		}
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal error text must not leak, got %q", body.Error.Message)
	}
}

func TestWriteErrorLogsClientErrorsAsWarnings(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(),
		pkgerrors.New(pkgerrors.CodeForbidden, "nope").WithDetails(map[string]any{"team_id": "t-1"}))
	if !bytes.Contains(buf.Bytes(), []byte(`"level":"warn"`)) || !bytes.Contains(buf.Bytes(), []byte(`"team_id":"t-1"`)) {
		t.Fatalf("expected warn entry with team id; entry=%s", buf.String())
	}

	buf.Reset()
	WriteError(context.Background(), logg, httptest.NewRecorder(), errors.New("db exploded"))
	if !bytes.Contains(buf.Bytes(), []byte(`"level":"error"`)) {
		t.Fatalf("expected error entry; entry=%s", buf.String())
	}
}

func TestWriteErrorEchoesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	ctx := WithRequestID(context.Background(), "req-42")
	WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "team not found"))

	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.RequestID != "req-42" {
		t.Fatalf("expected request id echoed, got %q", body.Error.RequestID)
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Fatalf("expected empty request id without middleware")
	}
}
