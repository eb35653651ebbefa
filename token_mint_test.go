package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	auth "github.com/pitchside/academy-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintScopedToken(t *testing.T) {
	ctx := context.Background()
	svc := testTokenService()

	coach := auth.NewIdentityFromUser(&auth.User{
		ID:    uuid.New(),
		Email: "coach@northside.fc",
		Role:  auth.RoleCoach,
	})

	t.Run("uses token service defaults", func(t *testing.T) {
		token, expiresAt, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, coach.ID(), claims.UserID())
		assert.Equal(t, auth.KindUser, claims.Kind())
		assert.Equal(t, string(auth.RoleCoach), claims.Role())
		assert.WithinDuration(t, expiresAt, claims.Expires(), time.Second)
		assert.Equal(t, 24*time.Hour, claims.Expires().Sub(claims.IssuedAt()))
	})

	t.Run("ttl override shortens the token", func(t *testing.T) {
		issuedAt := time.Now()
		token, expiresAt, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{
			TTL:      15 * time.Minute,
			IssuedAt: issuedAt,
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, issuedAt.Add(15*time.Minute), expiresAt, time.Second)
	})

	t.Run("metadata and decorators land in the claims", func(t *testing.T) {
		decorator := auth.ClaimsDecoratorFunc(func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
			if claims.Metadata == nil {
				claims.Metadata = map[string]any{}
			}
			claims.Metadata["squad"] = "u16"
			return nil
		})

		token, _, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{
			Metadata:   map[string]any{"purpose": "invite"},
			Decorators: []auth.ClaimsDecorator{decorator},
		})
		require.NoError(t, err)

		validated, err := svc.Validate(token)
		require.NoError(t, err)

		jwtClaims, ok := validated.(*auth.JWTClaims)
		require.True(t, ok)
		assert.Equal(t, "invite", jwtClaims.ClaimsMetadata()["purpose"])
		assert.Equal(t, "u16", jwtClaims.ClaimsMetadata()["squad"])
	})

	t.Run("decorator cannot touch identity claims", func(t *testing.T) {
		decorator := auth.ClaimsDecoratorFunc(func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
			claims.UID = "someone-else"
			return nil
		})

		_, _, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{
			Decorators: []auth.ClaimsDecorator{decorator},
		})
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, "IMMUTABLE_CLAIM_MUTATION", richErr.TextCode)
	})

	t.Run("decorator cannot reassign kind or role", func(t *testing.T) {
		mutations := map[string]auth.ClaimsDecoratorFunc{
			"kind": func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
				claims.IdentityKind = auth.KindAcademy
				return nil
			},
			"role": func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
				claims.UserRole = string(auth.RoleAdmin)
				return nil
			},
		}

		for claim, decorator := range mutations {
			_, _, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{
				Decorators: []auth.ClaimsDecorator{decorator},
			})
			require.Error(t, err, claim)

			var richErr *errors.Error
			require.True(t, errors.As(err, &richErr))
			assert.Equal(t, "IMMUTABLE_CLAIM_MUTATION", richErr.TextCode)
			assert.Equal(t, claim, richErr.Metadata["claim"])
		}
	})

	t.Run("decorator error aborts the mint", func(t *testing.T) {
		decorator := auth.ClaimsDecoratorFunc(func(context.Context, auth.Identity, *auth.JWTClaims) error {
			return assert.AnError
		})

		_, _, err := auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{
			Decorators: []auth.ClaimsDecorator{decorator},
		})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("rejects missing inputs", func(t *testing.T) {
		_, _, err := auth.MintScopedToken(ctx, nil, coach, auth.ScopedTokenOptions{})
		assert.Error(t, err)

		_, _, err = auth.MintScopedToken(ctx, svc, nil, auth.ScopedTokenOptions{})
		assert.Error(t, err)

		_, _, err = auth.MintScopedToken(ctx, svc, coach, auth.ScopedTokenOptions{TTL: -time.Minute})
		assert.Error(t, err)
	})
}

func TestIdentityAdapters(t *testing.T) {
	t.Run("user adapter", func(t *testing.T) {
		user := &auth.User{ID: uuid.New(), Email: "keeper@northside.fc", Role: auth.RoleScout}
		identity := auth.NewIdentityFromUser(user)
		require.NotNil(t, identity)

		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "keeper@northside.fc", identity.Email())
		assert.Equal(t, auth.KindUser, identity.Kind())
		assert.Equal(t, string(auth.RoleScout), identity.Role())
	})

	t.Run("academy adapter has no role", func(t *testing.T) {
		academy := &auth.Academy{ID: uuid.New(), Email: "office@northside.fc", Name: "Northside FC"}
		identity := auth.NewIdentityFromAcademy(academy)
		require.NotNil(t, identity)

		assert.Equal(t, academy.ID.String(), identity.ID())
		assert.Equal(t, auth.KindAcademy, identity.Kind())
		assert.Equal(t, "", identity.Role())
	})

	t.Run("nil records yield nil identities", func(t *testing.T) {
		assert.Nil(t, auth.NewIdentityFromUser(nil))
		assert.Nil(t, auth.NewIdentityFromAcademy(nil))
	})
}
