package auth

import (
	"context"
	"reflect"

	goerrors "github.com/goliatone/go-errors"
)

type Auther struct {
	provider     IdentityProvider
	logger       Logger
	tokenService TokenService
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetExtendedTokenDuration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		logger:       defLogger{},
		tokenService: tokenService,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service used to issue and validate JWTs.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token. Every
// credential failure collapses into ErrInvalidCredentials; only
// infrastructure errors surface with their own category. The real reason is
// logged and emitted to the activity sink for operators.
func (s *Auther) Login(ctx context.Context, kind, identifier, password string, extended bool) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, kind, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"kind":       kind,
			"error":      err.Error(),
		})
		return "", uniformLoginError(err)
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"kind":       kind,
			"error":      ErrInvalidCredentials.Error(),
		})
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Issue(identity, extended)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"kind":       kind,
			"error":      err.Error(),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
		"kind":       kind,
		"extended":   extended,
	})

	return token, nil
}

// ClaimsFromToken validates a raw token and returns its claims.
func (s *Auther) ClaimsFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("ClaimsFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, identityID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		IdentityID: identityID,
		Metadata:   metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: identity.Kind(),
	}
}

// uniformLoginError hides credential and account-status details behind the
// generic failure. Internal errors keep their category so callers can map
// them to a 500.
func uniformLoginError(err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryInternal {
		return richErr
	}
	return ErrInvalidCredentials
}

var _ Authenticator = (*Auther)(nil)
