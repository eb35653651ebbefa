package auth

// TokenValidator is the verification half of a TokenService. Middleware and
// websocket upgrades only need this side, so they accept the narrow interface.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// MultiTokenValidator verifies against an ordered set of signing keys, newest
// first. During a key rotation, tokens issued under the retired key keep
// validating until they expire while new tokens come off the current key.
type MultiTokenValidator struct {
	chain []TokenValidator
}

// NewMultiTokenValidator builds the rotation chain, skipping nil entries.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	chain := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			chain = append(chain, v)
		}
	}
	return &MultiTokenValidator{chain: chain}
}

// Validate tries each key in order. A malformed result usually means a
// signature mismatch against that key, so the next key gets a turn; anything
// else (expiry, bad issuer) is definitive and stops the chain. An empty or
// exhausted chain reports the token as malformed.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	err := error(ErrTokenMalformed)
	for _, validator := range m.chain {
		claims, verr := validator.Validate(tokenString)
		switch {
		case verr == nil:
			return claims, nil
		case IsMalformedError(verr):
			err = verr
		default:
			return nil, verr
		}
	}
	return nil, err
}
