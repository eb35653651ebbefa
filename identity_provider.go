package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// CredentialProvider resolves identities against a CredentialStore. It is the
// default IdentityProvider used by Auther.
type CredentialProvider struct {
	store  CredentialStore
	logger Logger
}

// NewCredentialProvider will create a new CredentialProvider
func NewCredentialProvider(store CredentialStore) *CredentialProvider {
	return &CredentialProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *CredentialProvider) WithLogger(l Logger) *CredentialProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity will find the identity, compare the password, and return it.
// Unknown email and wrong password both surface ErrInvalidCredentials so
// callers cannot tell which check failed. There is no attempt counter;
// repeated failures keep returning the same error.
func (p CredentialProvider) VerifyIdentity(ctx context.Context, kind, identifier, password string) (Identity, error) {
	record, err := p.store.FindByEmail(ctx, kind, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve identity during verification")
	}

	if err := ensureAuthenticatable(record); err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identityFromRecord(record), nil
}

func (p CredentialProvider) FindIdentityByIdentifier(ctx context.Context, kind, identifier string) (Identity, error) {
	record, err := p.store.FindByEmail(ctx, kind, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if err := ensureAuthenticatable(record); err != nil {
		return nil, err
	}

	return identityFromRecord(record), nil
}

type authIdentity struct {
	id       string
	email    string
	kind     string
	role     string
	status   AccountStatus
	verified bool
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Kind() string {
	return a.kind
}

func (a authIdentity) Role() string {
	return a.role
}

func (a authIdentity) Status() AccountStatus {
	if a.status == "" {
		return AccountStatusActive
	}
	return a.status
}

func (a authIdentity) EmailVerified() bool {
	return a.verified
}

var _ Identity = authIdentity{}

func identityFromRecord(record *CredentialRecord) authIdentity {
	return authIdentity{
		id:       record.ID.String(),
		email:    record.Email,
		kind:     record.Kind,
		role:     string(record.Role),
		status:   record.Status,
		verified: record.Verified,
	}
}

func ensureAuthenticatable(record *CredentialRecord) error {
	if record == nil {
		return ErrIdentityNotFound
	}

	if record.Status == "" {
		record.Status = AccountStatusActive
	}

	if err := statusAuthError(record.Status); err != nil {
		return err
	}

	return nil
}
