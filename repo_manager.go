package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories and doubles as the Bun-backed
// CredentialStore implementation.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	CredentialStore
	Users() Users
	Academies() Academies
	Tickets() Tickets
}

type mngr struct {
	db        *bun.DB
	users     Users
	academies Academies
	tickets   Tickets
}

var _ CredentialStore = (*mngr)(nil)

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		academies: NewAcademiesRepository(db),
		tickets:   NewTicketsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.academies == nil {
		return errors.New("repository academies should be initialized")
	}

	if m.tickets == nil {
		return errors.New("repository tickets should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Academies() Academies {
	return m.academies
}

func (m mngr) Tickets() Tickets {
	return m.tickets
}

func (m mngr) FindByEmail(ctx context.Context, kind IdentityKind, email string) (*CredentialRecord, error) {
	switch kind {
	case KindAcademy:
		academy, err := m.academies.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return academyCredentialRecord(academy), nil
	default:
		user, err := m.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return userCredentialRecord(user), nil
	}
}

func (m mngr) FindByID(ctx context.Context, ref IdentityRef) (*CredentialRecord, error) {
	switch ref.Kind {
	case KindAcademy:
		academy, err := m.academies.GetByID(ctx, ref.ID.String())
		if err != nil {
			return nil, err
		}
		return academyCredentialRecord(academy), nil
	default:
		user, err := m.users.GetByID(ctx, ref.ID.String())
		if err != nil {
			return nil, err
		}
		return userCredentialRecord(user), nil
	}
}

func (m mngr) CreateUser(ctx context.Context, user *User) (*User, error) {
	return m.users.Create(ctx, user)
}

func (m mngr) CreateAcademy(ctx context.Context, academy *Academy) (*Academy, error) {
	return m.academies.Create(ctx, academy)
}

func (m mngr) UpdatePassword(ctx context.Context, ref IdentityRef, passwordHash string) error {
	if ref.Kind == KindAcademy {
		return m.academies.ResetPassword(ctx, ref.ID, passwordHash)
	}
	return m.users.ResetPassword(ctx, ref.ID, passwordHash)
}

func (m mngr) MarkVerified(ctx context.Context, ref IdentityRef) error {
	if ref.Kind == KindAcademy {
		return m.academies.MarkEmailVerified(ctx, ref.ID)
	}
	return m.users.MarkEmailVerified(ctx, ref.ID)
}

func (m mngr) SetTicket(ctx context.Context, ticket *VerificationTicket) error {
	if ticket == nil {
		return goerrors.New("ticket must not be nil", goerrors.CategoryInternal)
	}
	return m.tickets.Replace(ctx, ticket)
}

func (m mngr) FindByTicketHash(ctx context.Context, purpose TicketPurpose, tokenHash string) (*VerificationTicket, error) {
	return m.tickets.GetByTokenHash(ctx, purpose, tokenHash)
}

func (m mngr) ClearTicket(ctx context.Context, id uuid.UUID) error {
	return m.tickets.DeleteByID(ctx, id)
}

func userCredentialRecord(user *User) *CredentialRecord {
	user.EnsureStatus()
	return &CredentialRecord{
		ID:           user.ID,
		Kind:         KindUser,
		Email:        user.Email,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		Verified:     user.EmailVerified,
		Status:       user.Status,
	}
}

func academyCredentialRecord(academy *Academy) *CredentialRecord {
	academy.EnsureStatus()
	return &CredentialRecord{
		ID:           academy.ID,
		Kind:         KindAcademy,
		Email:        academy.Email,
		PasswordHash: academy.PasswordHash,
		Verified:     academy.EmailVerified,
		Status:       academy.Status,
	}
}
