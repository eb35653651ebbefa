package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	auth "github.com/pitchside/academy-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTokenService() auth.TokenService {
	return auth.NewTokenService([]byte("test-signing-key"), 24, 0, "test-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})
}

func TestRegisterIdentityHandler_User(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active user and issues a token", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindUser, "ada.keeper@example.com").
			Return(nil, notFoundErr("user not found")).Once()
		store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "ada.keeper@example.com" &&
				u.Role == auth.RoleCoach &&
				u.Status == auth.AccountStatusActive &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret-password"
		})).Return(&auth.User{
			ID:     uuid.New(),
			Email:  "ada.keeper@example.com",
			Role:   auth.RoleCoach,
			Status: auth.AccountStatusActive,
		}, nil).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService()).
			WithLogger(testLogger{})

		var resp *auth.RegisterIdentityResponse
		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Kind:      auth.KindUser,
			Email:     "ada.keeper@example.com",
			Password:  "secret-password",
			FirstName: "Ada",
			LastName:  "Keeper",
			Role:      "coach",
			OnResponse: func(r *auth.RegisterIdentityResponse) {
				resp = r
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, auth.KindUser, resp.Identity.Kind())
		assert.Equal(t, string(auth.RoleCoach), resp.Identity.Role())

		store.AssertExpectations(t)
	})

	t.Run("role defaults to player", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindUser, "kid@example.com").
			Return(nil, notFoundErr("user not found")).Once()
		store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Role == auth.RolePlayer
		})).Return(&auth.User{ID: uuid.New(), Email: "kid@example.com", Role: auth.RolePlayer}, nil).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService())

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Email:    "kid@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindUser, "boss@example.com").
			Return(nil, notFoundErr("user not found")).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService())

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Email:    "boss@example.com",
			Password: "secret-password",
			Role:     "president",
		})
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, errors.CategoryBadInput, richErr.Category)
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindUser, "ada.keeper@example.com").
			Return(activeUserRecord(t, "ada.keeper@example.com", "secret-password"), nil).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService())

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Email:    "ada.keeper@example.com",
			Password: "secret-password",
		})
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("weak password is rejected before any write", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindUser, "ada.keeper@example.com").
			Return(nil, notFoundErr("user not found")).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService())

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Email:    "ada.keeper@example.com",
			Password: "123",
		})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		handler := auth.NewRegisterIdentityHandler(&MockCredentialStore{}, testTokenService())

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Kind:     "club",
			Email:    "ada.keeper@example.com",
			Password: "secret-password",
		})
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, errors.CategoryBadInput, richErr.Category)
	})
}

func TestRegisterIdentityHandler_Academy(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending academy with a verification ticket", func(t *testing.T) {
		academyID := uuid.New()

		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindAcademy, "office@northside.fc").
			Return(nil, notFoundErr("academy not found")).Once()
		store.On("CreateAcademy", mock.Anything, mock.MatchedBy(func(a *auth.Academy) bool {
			return a.Email == "office@northside.fc" &&
				a.Name == "Northside FC" &&
				a.Status == auth.AccountStatusPending
		})).Return(&auth.Academy{
			ID:     academyID,
			Email:  "office@northside.fc",
			Name:   "Northside FC",
			Status: auth.AccountStatusPending,
		}, nil).Once()
		store.On("SetTicket", mock.Anything, mock.MatchedBy(func(tk *auth.VerificationTicket) bool {
			return tk.IdentityID == academyID &&
				tk.IdentityKind == auth.KindAcademy &&
				tk.Purpose == auth.TicketPurposeVerify
		})).Return(nil).Once()

		notifier := &MockNotifier{}
		notifier.On("Send", mock.Anything, "office@northside.fc", auth.NotificationEmailVerification, mock.Anything).
			Return(nil).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService()).
			WithNotifier(notifier)

		var resp *auth.RegisterIdentityResponse
		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Kind:     auth.KindAcademy,
			Email:    "office@northside.fc",
			Password: "secret-password",
			Name:     "Northside FC",
			OnResponse: func(r *auth.RegisterIdentityResponse) {
				resp = r
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, auth.KindAcademy, resp.Identity.Kind())
		assert.NotEmpty(t, resp.Token)

		store.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("mail failure does not fail registration", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, auth.KindAcademy, "office@northside.fc").
			Return(nil, notFoundErr("academy not found")).Once()
		store.On("CreateAcademy", mock.Anything, mock.Anything).
			Return(&auth.Academy{ID: uuid.New(), Email: "office@northside.fc", Status: auth.AccountStatusPending}, nil).Once()
		store.On("SetTicket", mock.Anything, mock.Anything).Return(nil).Once()

		notifier := &MockNotifier{}
		notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down", errors.CategoryOperation)).Once()

		handler := auth.NewRegisterIdentityHandler(store, testTokenService()).
			WithNotifier(notifier).
			WithLogger(testLogger{})

		err := handler.Execute(ctx, auth.RegisterIdentityMessage{
			Kind:     auth.KindAcademy,
			Email:    "office@northside.fc",
			Password: "secret-password",
			Name:     "Northside FC",
		})
		assert.NoError(t, err)
	})
}
