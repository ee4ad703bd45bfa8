package response

import (
	"net/http"

	appctx "github.com/baechuer/account-service/internal/pkg/context"
)

// RequestIDFromContext extracts the request id set by the request-id middleware.
func RequestIDFromContext(r *http.Request) string {
	if reqID, ok := appctx.RequestID(r.Context()); ok {
		return reqID
	}
	return ""
}
