package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

// WSTokenValidator implements go-router's WSTokenValidator interface using
// the TokenService so WebSocket upgrades share the same token checks as
// HTTP routes.
type WSTokenValidator struct {
	tokenService TokenService
}

// NewWSTokenValidator creates a new WebSocket token validator using the provided TokenService
func NewWSTokenValidator(tokenService TokenService) *WSTokenValidator {
	return &WSTokenValidator{
		tokenService: tokenService,
	}
}

// Validate validates a token string and returns WebSocket-compatible auth claims
func (w *WSTokenValidator) Validate(tokenString string) (router.WSAuthClaims, error) {
	claims, err := w.tokenService.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &WSAuthClaimsAdapter{claims: claims}, nil
}

// WSAuthClaimsAdapter adapts AuthClaims to go-router's WSAuthClaims
// interface. The resource permission checks map to the role model: any
// authenticated identity may read, coaches and admins may write, only
// admins may delete.
type WSAuthClaimsAdapter struct {
	claims AuthClaims
}

// Subject returns the subject claim
func (w *WSAuthClaimsAdapter) Subject() string {
	return w.claims.Subject()
}

// UserID returns the identity ID
func (w *WSAuthClaimsAdapter) UserID() string {
	return w.claims.UserID()
}

// Role returns the identity's role
func (w *WSAuthClaimsAdapter) Role() string {
	return w.claims.Role()
}

// CanRead reports read access; any authenticated identity passes.
func (w *WSAuthClaimsAdapter) CanRead(resource string) bool {
	return true
}

// CanEdit reports edit access for coaches; admins pass implicitly.
func (w *WSAuthClaimsAdapter) CanEdit(resource string) bool {
	return w.claims.Satisfies(string(RoleCoach))
}

// CanCreate reports create access for coaches; admins pass implicitly.
func (w *WSAuthClaimsAdapter) CanCreate(resource string) bool {
	return w.claims.Satisfies(string(RoleCoach))
}

// CanDelete reports delete access; admins only.
func (w *WSAuthClaimsAdapter) CanDelete(resource string) bool {
	return w.claims.HasRole(string(RoleAdmin))
}

// HasRole checks if the identity holds a specific role
func (w *WSAuthClaimsAdapter) HasRole(role string) bool {
	return w.claims.HasRole(role)
}

// IsAtLeast checks if the identity's role ranks at or above the minimum role
func (w *WSAuthClaimsAdapter) IsAtLeast(minRole string) bool {
	return RoleAtLeast(UserRole(w.claims.Role()), UserRole(minRole))
}

// NewWSAuthMiddleware creates a fully configured WebSocket authentication
// middleware backed by this authenticator's TokenService.
func (s *Auther) NewWSAuthMiddleware(config ...router.WSAuthConfig) router.WebSocketMiddleware {
	validator := NewWSTokenValidator(s.tokenService)

	var cfg router.WSAuthConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	cfg.TokenValidator = validator

	return router.NewWSAuth(cfg)
}

// WSAuthClaimsFromContext retrieves the auth claims stored by the WebSocket
// middleware, returning the underlying AuthClaims when available.
func WSAuthClaimsFromContext(ctx context.Context) (AuthClaims, bool) {
	wsAuthClaims, ok := router.WSAuthClaimsFromContext(ctx)
	if !ok {
		return nil, false
	}

	if adapter, ok := wsAuthClaims.(*WSAuthClaimsAdapter); ok {
		return adapter.claims, true
	}

	return nil, false
}
