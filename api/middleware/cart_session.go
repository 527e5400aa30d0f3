package middleware

import (
	"net/http"
	"strings"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// CartTokenHeader carries the signed cart session token in both directions.
const CartTokenHeader = "X-Cart-Token"

type cartSessions interface {
	Parse(token string) (string, error)
	NewSession() (string, string, error)
}

// CartSession resolves the shopper's cart session from X-Cart-Token. A
// missing, expired or forged token starts a fresh session; the token in use
// is always echoed back so the client can persist it.
func CartSession(sessions cartSessions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := strings.TrimSpace(r.Header.Get(CartTokenHeader))

			sessionID := ""
			if token != "" {
				parsed, err := sessions.Parse(token)
				if err != nil {
					if logg != nil {
						logg.Warn(logg.WithField(ctx, "reason", err.Error()), "cart.token.rejected")
					}
				} else {
					sessionID = parsed
				}
			}

			if sessionID == "" {
				newID, newToken, err := sessions.NewSession()
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start cart session"))
					return
				}
				sessionID, token = newID, newToken
			}

			w.Header().Set(CartTokenHeader, token)
			ctx = WithCartSession(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
