package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/service"
)

// RequireRoleManager re-checks the caller's current profile, so an admin demoted
// after the token was issued is refused.
func RequireRoleManager(rbac *service.RBACService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := rbac.RequireRoleManager(r.Context(), GetUserID(r.Context()))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, service.ErrForbidden):
				writeError(w, http.StatusForbidden, "This action is unauthorized.")
			case errors.Is(err, repo.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			default:
				log.Error().Err(err).Msg("privilege check failed")
				writeError(w, http.StatusInternalServerError, "Server Error")
			}
		})
	}
}
