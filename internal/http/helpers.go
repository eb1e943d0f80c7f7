package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/services"
)

// HeaderUserID carries the authenticated user set by the gateway in front of
// the API.
const HeaderUserID = "X-User-ID"

const maxUserIDLength = 128

type contextKey string

const userIDKey contextKey = "user_id"

// requireUser rejects requests without a usable X-User-ID with 401 and
// stores the id in the context otherwise.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" || len(userID) > maxUserIDLength || !utf8.ValidString(userID) || strings.ContainsFunc(userID, isControl) {
			UnauthorizedError("missing or invalid " + HeaderUserID + " header").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// sanitizeInput trims s and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool {
	return r < 32 || r == 127
}

// writeError maps err to a status and logs what the client will not see.
//
//	malformed request  -> 400
//	ledger.ErrNotFound -> 404
//	validation         -> 422
//	anything else      -> 500
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := applog.FromContext(r.Context())

	switch {
	case isBadRequest(err):
		logger.WarnContext(r.Context(), "Rejected malformed request",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError("resource not found").Write(w)
	case services.IsValidation(err):
		logger.InfoContext(r.Context(), "Rejected invalid input",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, context.Canceled):
		// The client is gone; nothing useful can be written.
		logger.DebugContext(r.Context(), "Request canceled",
			applog.FieldOperation, op)
	default:
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldError, err)
		InternalServerError().Write(w)
	}
}
