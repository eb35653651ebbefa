package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ResetAcademyPasswordSQL = `UPDATE "academies" AS "acd"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acd"."deleted_at" IS NULL
AND (
	"acd"."id" = ?
) RETURNING *;`

type Academies interface {
	repository.Repository[*Academy]

	Register(ctx context.Context, academy *Academy) (*Academy, error)
	RegisterTx(ctx context.Context, tx bun.IDB, academy *Academy) (*Academy, error)
	Create(ctx context.Context, record *Academy, criteria ...repository.InsertCriteria) (*Academy, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Academy, criteria ...repository.InsertCriteria) (*Academy, error)

	GetByEmail(ctx context.Context, email string) (*Academy, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Academy, error)

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

type academies struct {
	repository.Repository[*Academy]
	db *bun.DB
}

var (
	_ Academies                       = (*academies)(nil)
	_ repository.Repository[*Academy] = (*academies)(nil)
)

func NewAcademiesRepository(db *bun.DB) Academies {
	repo := repository.NewRepository[*Academy](db, repository.ModelHandlers[*Academy]{
		NewRecord: func() *Academy { return &Academy{} },
		GetID: func(a *Academy) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Academy, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &academies{
		Repository: repo,
		db:         db,
	}
}

func (a *academies) Register(ctx context.Context, academy *Academy) (*Academy, error) {
	return a.RegisterTx(ctx, a.db, academy)
}

func (a *academies) RegisterTx(ctx context.Context, tx bun.IDB, academy *Academy) (*Academy, error) {
	return a.CreateTx(ctx, tx, academy)
}

func (a *academies) Create(ctx context.Context, record *Academy, criteria ...repository.InsertCriteria) (*Academy, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *academies) CreateTx(ctx context.Context, tx bun.IDB, record *Academy, criteria ...repository.InsertCriteria) (*Academy, error) {
	prepareAcademyDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *academies) GetByEmail(ctx context.Context, email string) (*Academy, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *academies) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Academy, error) {
	record := &Academy{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *academies) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *academies) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetAcademyPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// MarkEmailVerified flips the verification flag. Only pending academies are
// promoted to active; a suspended or disabled academy keeps its status so a
// verification link cannot lift an operator block.
func (a *academies) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*Academy)(nil)).
		Set("is_email_verified = TRUE").
		Set("status = CASE WHEN status = ? THEN ? ELSE status END", AccountStatusPending, AccountStatusActive).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	return err
}

func prepareAcademyDefaults(record *Academy) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
