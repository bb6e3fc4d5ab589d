package jwt

import (
	"context"
	"net/http"
	"strings"

	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/resp"
)

type contextKey string

const (
	// ContextClaimsKey stores the verified caller Claims in the request Context.
	ContextClaimsKey contextKey = "client_claims"
)

// RequireClientToken rejects gateway requests that do not carry a token signed with the
// deployment secret for the deployment client id. Both "Bearer <token>" and a raw token are
// accepted on the way in; verified claims are injected into the Context.
func RequireClientToken(issuer *Issuer, identity ClientIdentity) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := strings.TrimSpace(r.Header.Get("Authorization"))
			if scheme, rest, found := strings.Cut(tokenString, " "); found && strings.EqualFold(scheme, "Bearer") {
				tokenString = strings.TrimSpace(rest)
			}

			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			claims, err := issuer.Parse(tokenString, identity.ClientSecret)
			if err != nil {
				logx.Warn("Rejected gateway token", "error", err.Error())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			if claims.String(ClaimClientID) != identity.ClientID {
				logx.Warn("Gateway token issued for another client", "client_id", claims.String(ClaimClientID))
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), ContextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext returns the verified claims, or nil outside RequireClientToken.
func GetClaimsFromContext(r *http.Request) Claims {
	claims, ok := r.Context().Value(ContextClaimsKey).(Claims)
	if !ok {
		return nil
	}
	return claims
}
