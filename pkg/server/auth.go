package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gridadvisor/gridadvisor/pkg/log"
	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// authMiddleware authenticates API requests via OIDC bearer tokens and
// resolves the target siteID from the query string or request body. In
// single-site mode the siteID requirement is dropped; with bypass-auth the
// token requirement is dropped too.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		allowNoSite := r.URL.Path == "/api/auth/status" || r.URL.Path == "/api/list/sites"

		// extract siteID
		var siteID string
		if r.Method == http.MethodGet {
			siteID = r.URL.Query().Get("siteID")
		} else {
			// read body to find siteID
			var bodyBytes []byte
			if r.Body != nil {
				// Limit body size to 1MB to prevent DoS
				r.Body = http.MaxBytesReader(w, r.Body, 1048576)
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					log.Ctx(ctx).ErrorContext(ctx, "failed to read request body", slog.Any("error", err))
					http.Error(w, "invalid request", http.StatusBadRequest)
					return
				}
				// restore body for next handler
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
			if len(bodyBytes) > 0 {
				var justSiteID struct {
					SiteID string `json:"siteID"`
				}
				if err := json.Unmarshal(bodyBytes, &justSiteID); err != nil {
					log.Ctx(ctx).ErrorContext(ctx, "failed to unmarshal request body", slog.Any("error", err))
					http.Error(w, "invalid request", http.StatusBadRequest)
					return
				}
				siteID = justSiteID.SiteID
			}
		}
		if s.singleSite {
			siteID = types.SiteIDNone
		}
		if siteID == "" && !allowNoSite {
			writeJSONError(w, "missing siteID", http.StatusBadRequest)
			return
		}

		if !s.bypassAuth {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			email, err := s.authenticateToken(ctx, token)
			if err != nil {
				log.Ctx(ctx).WarnContext(ctx, "token validation failed", slog.Any("error", err))
				writeJSONError(w, "invalid auth token", http.StatusUnauthorized)
				return
			}
			if r.Method != http.MethodGet && !s.isAdmin(email) {
				log.Ctx(ctx).WarnContext(ctx, "write denied for non-admin", slog.String("email", email))
				writeJSONError(w, "not allowed", http.StatusForbidden)
				return
			}
			ctx = context.WithValue(ctx, emailContextKey, email)
		}

		ctx = context.WithValue(ctx, siteIDContextKey, siteID)
		if siteID != "" {
			ctx = log.WithSite(ctx, siteID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticateToken validates the raw ID token against every configured
// verifier and returns the verified email claim.
func (s *Server) authenticateToken(ctx context.Context, rawToken string) (string, error) {
	var lastErr error
	for name, verify := range s.oidcVerifiers {
		idToken, err := verify(ctx, rawToken)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", name, err)
			continue
		}
		var claims struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
		}
		if err := idToken.Claims(&claims); err != nil {
			lastErr = fmt.Errorf("%s claims: %w", name, err)
			continue
		}
		if claims.Email == "" || !claims.EmailVerified {
			lastErr = fmt.Errorf("%s: token missing verified email", name)
			continue
		}
		return claims.Email, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no oidc verifiers configured")
	}
	return "", lastErr
}

func (s *Server) isAdmin(email string) bool {
	for _, a := range s.adminEmails {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Email      string `json:"email,omitempty"`
		BypassAuth bool   `json:"bypassAuth"`
		SingleSite bool   `json:"singleSite"`
	}{
		Email:      s.getEmail(r),
		BypassAuth: s.bypassAuth,
		SingleSite: s.singleSite,
	})
}
