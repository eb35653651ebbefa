package auth

import (
	"context"

	"github.com/google/uuid"
)

// IdentityRef points at a stored identity without loading it.
type IdentityRef struct {
	ID   uuid.UUID
	Kind IdentityKind
}

// CredentialRecord is the store-agnostic projection the auth flows operate
// on. PasswordHash never leaves this package.
type CredentialRecord struct {
	ID           uuid.UUID
	Kind         IdentityKind
	Email        string
	Role         UserRole
	PasswordHash string
	Verified     bool
	Status       AccountStatus
}

// Ref returns the identity reference for the record.
func (r *CredentialRecord) Ref() IdentityRef {
	return IdentityRef{ID: r.ID, Kind: r.Kind}
}

// CredentialStore is the persistence boundary for the auth core. The
// Bun-backed RepositoryManager implements it; callers may substitute any
// other storage. Implementations must return a not-found rich error
// (errors.CategoryNotFound) for missing records so flows can distinguish
// absence from infrastructure failure.
type CredentialStore interface {
	FindByEmail(ctx context.Context, kind IdentityKind, email string) (*CredentialRecord, error)
	FindByID(ctx context.Context, ref IdentityRef) (*CredentialRecord, error)

	CreateUser(ctx context.Context, user *User) (*User, error)
	CreateAcademy(ctx context.Context, academy *Academy) (*Academy, error)

	UpdatePassword(ctx context.Context, ref IdentityRef, passwordHash string) error
	MarkVerified(ctx context.Context, ref IdentityRef) error

	// SetTicket stores the ticket, replacing any active ticket for the same
	// identity and purpose. Last writer wins.
	SetTicket(ctx context.Context, ticket *VerificationTicket) error
	FindByTicketHash(ctx context.Context, purpose TicketPurpose, tokenHash string) (*VerificationTicket, error)
	ClearTicket(ctx context.Context, id uuid.UUID) error
}
