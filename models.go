package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle status shared by users and academies.
type AccountStatus = string

const (
	// AccountStatusPending is a registered account awaiting email verification
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusActive is a fully usable account
	AccountStatusActive AccountStatus = "active"
	// AccountStatusSuspended is temporarily blocked by an operator
	AccountStatusSuspended AccountStatus = "suspended"
	// AccountStatusDisabled is blocked until re-enabled
	AccountStatusDisabled AccountStatus = "disabled"
	// AccountStatusArchived is terminally retired
	AccountStatusArchived AccountStatus = "archived"
)

// User is an individual account: admin, coach, player, scout, or parent.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string         `bun:"first_name" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name" json:"last_name,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"-"`
	EmailVerified bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Status        AccountStatus  `bun:"status,nullzero" json:"status,omitempty"`
	SuspendedAt   *time.Time     `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value for rows created before status existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = AccountStatusActive
	}
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Academy is an organization account. Academies have no role and start
// pending until their email is verified.
type Academy struct {
	bun.BaseModel `bun:"table:academies,alias:acd"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string        `bun:"name,notnull" json:"name,omitempty"`
	Email         string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string        `bun:"password_hash" json:"-"`
	EmailVerified bool          `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Status        AccountStatus `bun:"status,nullzero" json:"status,omitempty"`
	SuspendedAt   *time.Time    `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value; academies default to pending.
func (a *Academy) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusPending
	}
}

// VerificationTicket backs both password resets and email verification.
// Only the SHA-256 hash of the secret is stored; the raw value travels once,
// inside the notification mail. One active ticket per identity and purpose.
type VerificationTicket struct {
	bun.BaseModel `bun:"table:verification_tickets,alias:vtk"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	IdentityID    uuid.UUID     `bun:"identity_id,notnull,type:uuid" json:"identity_id,omitempty"`
	IdentityKind  IdentityKind  `bun:"identity_kind,notnull" json:"identity_kind,omitempty"`
	Purpose       TicketPurpose `bun:"purpose,notnull" json:"purpose,omitempty"`
	TokenHash     string        `bun:"token_hash,notnull,unique" json:"-"`
	ExpiresAt     time.Time     `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the ticket is past its deadline.
func (t *VerificationTicket) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
