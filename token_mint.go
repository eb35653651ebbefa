package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// ClaimsDecorator enriches claims before a scoped token is signed, e.g. with
// squad assignments or invite context for an academy. Decorators may only
// touch the Metadata extension; the registered and identity claims are pinned
// by the mint.
type ClaimsDecorator interface {
	Decorate(ctx context.Context, identity Identity, claims *JWTClaims) error
}

// ClaimsDecoratorFunc adapts a function into a ClaimsDecorator.
type ClaimsDecoratorFunc func(ctx context.Context, identity Identity, claims *JWTClaims) error

// Decorate satisfies the ClaimsDecorator interface.
func (f ClaimsDecoratorFunc) Decorate(ctx context.Context, identity Identity, claims *JWTClaims) error {
	if f == nil {
		return nil
	}
	return f(ctx, identity, claims)
}

type noopClaimsDecorator struct{}

func (noopClaimsDecorator) Decorate(context.Context, Identity, *JWTClaims) error {
	return nil
}

func normalizeClaimsDecorator(d ClaimsDecorator) ClaimsDecorator {
	if d == nil {
		return noopClaimsDecorator{}
	}
	return d
}

// ScopedTokenOptions controls how MintScopedToken issues short-lived tokens.
type ScopedTokenOptions struct {
	// TTL overrides the default token expiration. Zero uses TokenService defaults.
	TTL time.Duration
	// Issuer overrides the default issuer if provided.
	Issuer string
	// Audience overrides the default audience if provided.
	Audience []string
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
	// Metadata seeds the metadata extension claim on the minted token.
	Metadata map[string]any
	// Decorators run against the claims before signing. They may only touch
	// the Metadata extension; mutating registered or identity claims fails
	// the mint with ErrImmutableClaimMutation.
	Decorators []ClaimsDecorator
}

type tokenDefaults struct {
	issuer   string
	audience jwt.ClaimStrings
	ttl      time.Duration
}

type tokenDefaultsProvider interface {
	tokenDefaults() tokenDefaults
}

// MintScopedToken mints a short-lived JWT for the identity with optional
// metadata and TTL override. It uses TokenService defaults for issuer,
// audience, and TTL when available.
func MintScopedToken(ctx context.Context, tokenService TokenService, identity Identity, opts ScopedTokenOptions) (string, time.Time, error) {
	if tokenService == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	if identity == nil {
		return "", time.Time{}, goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	issuer := opts.Issuer
	audience := opts.Audience
	ttl := opts.TTL

	if defaultsProvider, ok := tokenService.(tokenDefaultsProvider); ok {
		defaults := defaultsProvider.tokenDefaults()
		if issuer == "" {
			issuer = defaults.issuer
		}
		if len(audience) == 0 {
			audience = defaults.audience
		}
		if ttl == 0 {
			ttl = defaults.ttl
		}
	}

	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	expiresAt := issuedAt.Add(ttl)

	var aud jwt.ClaimStrings
	if len(audience) > 0 {
		aud = make(jwt.ClaimStrings, len(audience))
		copy(aud, audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.ID(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:          identity.ID(),
		IdentityKind: identity.Kind(),
		UserRole:     identity.Role(),
	}

	if len(opts.Metadata) > 0 {
		claims.Metadata = make(map[string]any, len(opts.Metadata))
		for k, v := range opts.Metadata {
			claims.Metadata[k] = v
		}
	}

	ensureTokenID(&claims.RegisteredClaims)

	if err := decorateClaims(ctx, identity, claims, opts.Decorators); err != nil {
		return "", time.Time{}, err
	}

	token, err := tokenService.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// decorateClaims applies the decorators under the immutable-claims guard.
func decorateClaims(ctx context.Context, identity Identity, claims *JWTClaims, decorators []ClaimsDecorator) error {
	if len(decorators) == 0 {
		return nil
	}

	snap := captureImmutableClaims(claims)

	for _, decorator := range decorators {
		if err := normalizeClaimsDecorator(decorator).Decorate(ctx, identity, claims); err != nil {
			return err
		}
	}

	return snap.validate(claims)
}
