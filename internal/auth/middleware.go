package auth

import (
	"log/slog"
	"net/http"

	dErrors "expenses/pkg/domain-errors"
	"expenses/pkg/platform/httputil"
	"expenses/pkg/requestcontext"
)

// Validator checks a username and password pair.
type Validator interface {
	Validate(username, password string) (bool, error)
}

// RequireBasicAuth rejects requests without valid Basic credentials and
// stores the authenticated username in the request context.
func RequireBasicAuth(validator Validator, realm string, logger *slog.Logger) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			username, password, ok := r.BasicAuth()
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing credentials",
					"request_id", requestID,
				)
				unauthorized(w, challenge, "Missing Authorization header values")
				return
			}

			valid, err := validator.Validate(username, password)
			if err != nil && !dErrors.HasCode(err, dErrors.CodeInvalidArgument) {
				logger.ErrorContext(ctx, "credential validation failed",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "credential validation failed"))
				return
			}
			if !valid {
				logger.WarnContext(ctx, "unauthorized access - invalid credentials",
					"request_id", requestID,
				)
				unauthorized(w, challenge, "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUsername(ctx, username)))
		})
	}
}

func unauthorized(w http.ResponseWriter, challenge, msg string) {
	w.Header().Set("WWW-Authenticate", challenge)
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msg))
}
