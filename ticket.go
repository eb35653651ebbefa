package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// TicketPurpose discriminates what a verification ticket unlocks.
type TicketPurpose = string

const (
	// TicketPurposeReset authorizes a password reset
	TicketPurposeReset TicketPurpose = "password_reset"
	// TicketPurposeVerify confirms ownership of an email address
	TicketPurposeVerify TicketPurpose = "email_verification"
)

const (
	// ResetTicketTTL is how long a password reset secret stays valid.
	ResetTicketTTL = time.Hour
	// VerifyTicketTTL is how long an email verification secret stays valid.
	VerifyTicketTTL = 24 * time.Hour
)

// NewTicketSecret generates the raw secret mailed to the identity. The store
// only ever sees its hash.
func NewTicketSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate ticket secret")
	}
	return hex.EncodeToString(buf), nil
}

// HashTicketSecret derives the stored lookup key from a raw secret.
func HashTicketSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// TicketTTL returns the validity window for a purpose.
func TicketTTL(purpose TicketPurpose) time.Duration {
	if purpose == TicketPurposeVerify {
		return VerifyTicketTTL
	}
	return ResetTicketTTL
}

// NewVerificationTicket builds a ticket for the identity and returns it
// together with the raw secret to embed in the notification.
func NewVerificationTicket(identityID IdentityRef, purpose TicketPurpose) (*VerificationTicket, string, error) {
	secret, err := NewTicketSecret()
	if err != nil {
		return nil, "", err
	}

	ticket := &VerificationTicket{
		IdentityID:   identityID.ID,
		IdentityKind: identityID.Kind,
		Purpose:      purpose,
		TokenHash:    HashTicketSecret(secret),
		ExpiresAt:    time.Now().Add(TicketTTL(purpose)),
	}

	return ticket, secret, nil
}
