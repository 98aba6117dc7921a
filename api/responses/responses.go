package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

// logDetailKeys are lifted out of error details into log fields.
var logDetailKeys = []string{"team_id", "membership_id", "operation"}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteNoContent acknowledges mutations that have nothing to return.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err onto its error code's status and public message. Errors
// that are not *pkgerrors.Error are reported as INTERNAL_ERROR.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := ErrorBody{
		Code:      string(typed.Code()),
		Message:   publicMessage(typed, meta),
		RequestID: RequestIDFrom(ctx),
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if logg != nil {
		logFailure(ctx, logg, err, typed, meta.HTTPStatus)
	}
	writeJSON(w, meta.HTTPStatus, ErrorEnvelope{Error: body})
}

// publicMessage keeps caller-facing messages for 4xx codes and hides the
// internal message behind the generic one for everything else.
func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if meta.HTTPStatus >= http.StatusInternalServerError {
		return meta.PublicMessage
	}
	if m := typed.Message(); m != "" {
		return m
	}
	return meta.PublicMessage
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, status int) {
	fields := pkgerrors.Dump(err).Fields()
	fields["status"] = status
	if details, ok := typed.Details().(map[string]any); ok {
		for _, key := range logDetailKeys {
			if v, ok := details[key]; ok {
				fields[key] = v
			}
		}
	}

	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
