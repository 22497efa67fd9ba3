package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yushengtzou/yushengtzou.github.io/internal/authservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with the incoming X-Request-ID, or a fresh UUID when it is missing or malformed.
func (app *application) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		r = createRequestIDContext(r, id)

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		app.logger.Info("request from", slog.String("method", method), slog.String("uri", uri), slog.String("remote_addr", ip), slog.String("proto", proto), slog.String("request_id", requestIDFromContext(r)))

		next.ServeHTTP(w, r)
	})
}

func (app *application) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; object-src 'none'; frame-ancestors 'self'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		// Uploaded images are embedded by the site front end, which lives on another origin.
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")

		next.ServeHTTP(w, r)
	})
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")

		if origin != "" && slices.Contains(app.config.TrustedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			// Preflight request
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				w.WriteHeader(http.StatusOK)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimit allows RATE_LIMIT_REQUESTS requests per client IP in a fixed RATE_LIMIT_WINDOW that opens
// with the client's first request.
func (app *application) rateLimit(next http.Handler) http.Handler {
	limit := app.config.RateLimitRequests

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.RateLimitEnabled {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		count, reset := app.cache.Hit(common.CacheKeyRateLimit(ip), app.config.RateLimitWindow)

		resetSeconds := int(math.Ceil(time.Until(reset).Seconds()))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(max(limit-count, 0)))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if count > limit {
			w.Header().Set("Retry-After", strconv.Itoa(resetSeconds))
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate attaches the admin behind a valid bearer token. Missing, malformed, expired or revoked
// tokens leave the request anonymous; requireAdmin rejects them on the routes that need an admin.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		r = app.createAdminContext(r, &authservice.AnonymousAdmin)

		token := app.extractTokenFromHeader(r.Header.Get("Authorization"))
		if token == "" || !app.authenticator.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		admin, err := app.authenticator.Authenticate(token)
		if err != nil {
			if !errors.Is(err, authservice.ErrInvalidToken) {
				app.serverErrorResponse(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		r = app.createAdminContext(r, admin)
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards post management. It lets everything through when no admin password is configured.
func (app *application) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.authenticator.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		admin := app.getAdminContext(r)
		if admin.IsAnonymous() {
			if r.Header.Get("Authorization") != "" {
				app.invalidAuthenticationTokenResponse(w, r)
				return
			}
			app.authenticationRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) extractTokenFromHeader(authHeader string) string {
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return ""
	}

	return headerParts[1]
}
