package auth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// pinnedClaimFields are the claims a decorator may not change, in the order
// violations are reported. Registered claims pin the token's temporal and
// addressing envelope; uid, kind, and role pin the academy identity the token
// was minted for. Metadata is the only extension left open.
var pinnedClaimFields = []string{"sub", "iss", "aud", "uid", "kind", "role", "iat", "exp"}

// immutableClaimsSnapshot fingerprints the pinned claims before decoration so
// any mutation shows up as a fingerprint mismatch afterwards.
type immutableClaimsSnapshot map[string]string

func captureImmutableClaims(claims *JWTClaims) immutableClaimsSnapshot {
	return pinnedClaimValues(claims)
}

func (snap immutableClaimsSnapshot) validate(claims *JWTClaims) error {
	current := pinnedClaimValues(claims)
	for _, field := range pinnedClaimFields {
		if current[field] != snap[field] {
			return immutableClaimViolation(field)
		}
	}
	return nil
}

func pinnedClaimValues(claims *JWTClaims) immutableClaimsSnapshot {
	return immutableClaimsSnapshot{
		"sub":  claims.RegisteredClaims.Subject,
		"iss":  claims.RegisteredClaims.Issuer,
		"aud":  audienceFingerprint(claims.RegisteredClaims.Audience),
		"uid":  claims.UID,
		"kind": claims.IdentityKind,
		"role": claims.UserRole,
		"iat":  numericDateFingerprint(claims.RegisteredClaims.IssuedAt),
		"exp":  numericDateFingerprint(claims.RegisteredClaims.ExpiresAt),
	}
}

// audienceFingerprint joins with a separator that cannot appear in an
// audience URI, so reordering or splitting entries changes the fingerprint.
func audienceFingerprint(audience jwt.ClaimStrings) string {
	if len(audience) == 0 {
		return ""
	}
	return strconv.Itoa(len(audience)) + ":" + strings.Join(audience, "\x1f")
}

func numericDateFingerprint(date *jwt.NumericDate) string {
	if date == nil {
		return ""
	}
	return strconv.FormatInt(date.UnixNano(), 10)
}

func immutableClaimViolation(field string) error {
	clone := ErrImmutableClaimMutation.Clone()
	if clone == nil {
		return ErrImmutableClaimMutation
	}
	clone.Message = fmt.Sprintf("immutable claim mutated: %s", field)
	clone.Source = ErrImmutableClaimMutation
	return clone.WithMetadata(map[string]any{"claim": field})
}
