package auth

import (
	"context"
	"errors"
	"net/http"

	"inara-impact/internal/domain"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey{}).(*domain.Principal)
	return p
}

// Middleware authenticates HTTP Basic credentials and stores the principal
// in the request context. Requests without credentials pass through
// anonymously; handlers decide whether a principal is required.
// Wrong credentials are rejected with 401.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		p, err := s.Authenticate(r.Context(), email, password)
		if err != nil {
			if !errors.Is(err, ErrInvalidCredentials) {
				s.logger.Error().Err(err).Msg("authenticate")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="inara"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
