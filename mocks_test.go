package auth_test

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	auth "github.com/pitchside/academy-auth"
	"github.com/stretchr/testify/mock"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func notFoundErr(msg string) error {
	return errors.New(msg, errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}

// MockCredentialStore implements auth.CredentialStore for testing
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, kind auth.IdentityKind, email string) (*auth.CredentialRecord, error) {
	args := m.Called(ctx, kind, email)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.CredentialRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, ref auth.IdentityRef) (*auth.CredentialRecord, error) {
	args := m.Called(ctx, ref)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.CredentialRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) CreateAcademy(ctx context.Context, academy *auth.Academy) (*auth.Academy, error) {
	args := m.Called(ctx, academy)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.Academy), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) UpdatePassword(ctx context.Context, ref auth.IdentityRef, passwordHash string) error {
	args := m.Called(ctx, ref, passwordHash)
	return args.Error(0)
}

func (m *MockCredentialStore) MarkVerified(ctx context.Context, ref auth.IdentityRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockCredentialStore) SetTicket(ctx context.Context, ticket *auth.VerificationTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockCredentialStore) FindByTicketHash(ctx context.Context, purpose auth.TicketPurpose, tokenHash string) (*auth.VerificationTicket, error) {
	args := m.Called(ctx, purpose, tokenHash)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.VerificationTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) ClearTicket(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUsers stubs the status update used by the account state machine. The
// embedded interface covers the rest of auth.Users; anything unstubbed
// panics, which is what we want in tests.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status auth.AccountStatus, opts ...auth.StatusUpdateOption) (*auth.User, error) {
	args := m.Called(ctx, id, status, opts)
	if rec := args.Get(0); rec != nil {
		return rec.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier implements auth.Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to string, kind auth.NotificationKind, data map[string]any) error {
	args := m.Called(ctx, to, kind, data)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink for testing
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
