package middleware

import (
	"context"
	"net/http"

	apperrors "medibites/pkg/errors"
	httputil "medibites/pkg/http"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request id set by RequestLogging, or "".
func RequestIDFromContext(ctx context.Context) string {
	if rid := ctx.Value(RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			return id
		}
	}
	return ""
}

func writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	httputil.WriteError(w, err)
}
