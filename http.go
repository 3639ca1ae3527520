package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// InterceptorConfig tunes the token interceptor. Zero value works.
type InterceptorConfig struct {
	ContextKey string // Locals key for validated claims, default "user"
	AuthScheme string // default "Bearer"
	Header     string // default router.HeaderAuthorization
	Logger     Logger
}

func interceptorDefaults(config ...InterceptorConfig) InterceptorConfig {
	var cfg InterceptorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.Header == "" {
		cfg.Header = router.HeaderAuthorization
	}
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}
	return cfg
}

// TokenInterceptor authenticates requests that carry a bearer token. It
// never rejects: a missing header, wrong scheme, or bad token leaves the
// request anonymous and passes it along. Access control happens downstream
// in RequireAccess. On success the request context gains a Principal and the
// validated claims; the stored User record stays out of request state.
func TokenInterceptor(tokens TokenService, store IdentityStore, config ...InterceptorConfig) router.MiddlewareFunc {
	cfg := interceptorDefaults(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := PrincipalFromContext(ctx.Context()); ok {
				return ctx.Next()
			}

			raw, ok := bearerToken(ctx, cfg.Header, cfg.AuthScheme)
			if !ok {
				return ctx.Next()
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				cfg.Logger.Debug("TokenInterceptor rejected token: %v", err)
				return ctx.Next()
			}

			// Only access tokens authenticate requests. A leaked reset or
			// verification token must not open the API.
			if claims.Purpose() != PurposeAccess {
				cfg.Logger.Debug("TokenInterceptor ignoring %s token", claims.Purpose())
				return ctx.Next()
			}

			subject, err := uuid.Parse(claims.Subject())
			if err != nil {
				return ctx.Next()
			}

			user, err := store.FindByID(ctx.Context(), subject)
			if err != nil || user == nil {
				return ctx.Next()
			}

			if !tokens.IsValid(raw, user.ID) {
				return ctx.Next()
			}

			ctx.Locals(cfg.ContextKey, claims)
			stdCtx := WithClaimsContext(ctx.Context(), claims)
			ctx.SetContext(WithPrincipal(stdCtx, user.Principal()))

			return ctx.Next()
		}
	}
}

func bearerToken(ctx router.Context, header, scheme string) (string, bool) {
	value := ctx.GetString(header, "")
	prefix := scheme + " "
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(value[len(prefix):])
	return token, token != ""
}

// RequireAccess enforces the rule registry for every request it wraps.
// Anonymous requests to protected paths get 401, authenticated requests
// without the role get 403, and uncovered paths are denied.
func RequireAccess(registry *RuleRegistry) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			principal, _ := PrincipalFromContext(ctx.Context())
			if err := registry.Authorize(ctx.Path(), ctx.Method(), principal); err != nil {
				return WriteError(ctx, err)
			}
			return ctx.Next()
		}
	}
}

// HTTPStatus maps a structured error to a response status.
func HTTPStatus(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return router.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return router.StatusUnauthorized
	case errors.CategoryAuthz:
		return router.StatusForbidden
	case errors.CategoryNotFound:
		return router.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	case errors.CategoryConflict:
		return router.StatusConflict
	case errors.CategoryRateLimit:
		return router.StatusTooManyRequests
	default:
		return router.StatusInternalServerError
	}
}

// WriteError renders a structured error as a JSON response.
func WriteError(ctx router.Context, err error) error {
	status := HTTPStatus(err)

	body := map[string]any{
		"message": "internal server error",
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		body["message"] = richErr.Message
		if richErr.TextCode != "" {
			body["text_code"] = richErr.TextCode
		}
	}

	return ctx.JSON(status, map[string]any{"error": body})
}
