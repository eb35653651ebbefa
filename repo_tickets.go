package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tickets interface {
	repository.Repository[*VerificationTicket]

	GetByTokenHash(ctx context.Context, purpose TicketPurpose, tokenHash string) (*VerificationTicket, error)

	// Replace deletes any active ticket for the identity and purpose before
	// inserting the new one. Last writer wins when requests race.
	Replace(ctx context.Context, ticket *VerificationTicket) error
	ReplaceTx(ctx context.Context, tx bun.IDB, ticket *VerificationTicket) error

	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type tickets struct {
	repository.Repository[*VerificationTicket]
	db *bun.DB
}

var _ Tickets = (*tickets)(nil)

func NewTicketsRepository(db *bun.DB) Tickets {
	repo := repository.NewRepository[*VerificationTicket](db, repository.ModelHandlers[*VerificationTicket]{
		NewRecord: func() *VerificationTicket { return &VerificationTicket{} },
		GetID: func(t *VerificationTicket) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *VerificationTicket, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token_hash"
		},
	})

	return &tickets{
		Repository: repo,
		db:         db,
	}
}

func (r *tickets) GetByTokenHash(ctx context.Context, purpose TicketPurpose, tokenHash string) (*VerificationTicket, error) {
	record := &VerificationTicket{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.purpose = ?", purpose).
		Where("?TableAlias.token_hash = ?", tokenHash).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"purpose": purpose,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *tickets) Replace(ctx context.Context, ticket *VerificationTicket) error {
	return r.ReplaceTx(ctx, r.db, ticket)
}

func (r *tickets) ReplaceTx(ctx context.Context, tx bun.IDB, ticket *VerificationTicket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}

	_, err := tx.NewDelete().
		Model((*VerificationTicket)(nil)).
		Where("?TableAlias.identity_id = ?", ticket.IdentityID).
		Where("?TableAlias.identity_kind = ?", ticket.IdentityKind).
		Where("?TableAlias.purpose = ?", ticket.Purpose).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.Repository.CreateTx(ctx, tx, ticket)
	return err
}

func (r *tickets) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*VerificationTicket)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}
