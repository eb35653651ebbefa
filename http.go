package auth

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/pitchside/academy-auth/middleware/jwtware"
)

// RouteAuthenticator wires the token service into route middleware. It keeps
// cookie based sessions working for browser clients while API clients use
// the Authorization header.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	cookieDuration   time.Duration
	extendedDuration time.Duration
	Logger           Logger
	ErrorHandler     func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	extendedDuration := cookieDuration
	if cfg.GetExtendedTokenDuration() > 0 {
		extendedDuration = time.Duration(cfg.GetExtendedTokenDuration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:              cfg,
		auth:             auther,
		Logger:           defLogger{},
		cookieDuration:   cookieDuration,
		extendedDuration: extendedDuration,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a RouteAuthenticator) GetExtendedCookieDuration() time.Duration {
	return a.extendedDuration
}

// ProtectedRoute guards a route with token validation only; any
// authenticated identity passes.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.guard(cfg, errorHandler)
}

// RequireRoles guards a route with token validation plus a role check.
// Admins pass any role set.
func (a *RouteAuthenticator) RequireRoles(cfg Config, roles ...string) router.MiddlewareFunc {
	return a.guard(cfg, a.ErrorHandler, roles...)
}

func (a *RouteAuthenticator) guard(cfg Config, errorHandler func(router.Context, error) error, roles ...string) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.ErrorHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		TokenValidator:  tokenValidatorAdapter{ts: a.auth.TokenService()},
		RequiredRoles:   roles,
		ContextEnricher: ContextEnricherAdapter,
	})
}

// tokenValidatorAdapter bridges the package TokenService to the middleware's
// import-cycle-free validator interface.
type tokenValidatorAdapter struct {
	ts TokenService
}

func (v tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := v.ts.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Login authenticates the payload and sets the session cookie. The token is
// returned so JSON clients can carry it in the Authorization header instead.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(
		ctx.Context(),
		payload.GetKind(),
		payload.GetIdentifier(),
		payload.GetPassword(),
		payload.GetExtendedSession(),
	)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedDuration
	}

	a.setCookieToken(ctx, token, duration)
	return token, nil
}

func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// MakeClientRouteAuthErrorHandler builds the error handler for routes where
// auth is optional; failures fall through to the wrapped handler.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	code := richErr.Code
	if code == 0 {
		code = errors.CodeInternal
	}

	return c.JSON(code, map[string]any{
		"error":   richErr.Message,
		"details": richErr.TextCode,
	})
}
