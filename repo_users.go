package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ResetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*User, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*User, error)
	Suspend(ctx context.Context, actor ActorRef, user *User, opts ...TransitionOption) (*User, error)
	Reinstate(ctx context.Context, actor ActorRef, user *User, opts ...TransitionOption) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db                  *bun.DB
	stateMachine        AccountStateMachine
	stateMachineOptions []StateMachineOption
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

type UsersOption func(*users)

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func WithUsersStateMachineOptions(options ...StateMachineOption) UsersOption {
	return func(u *users) {
		if len(options) == 0 {
			return
		}
		u.stateMachineOptions = append(u.stateMachineOptions, options...)
		u.stateMachine = nil
	}
}

func WithUsersStateMachine(sm AccountStateMachine) UsersOption {
	return func(u *users) {
		u.stateMachine = sm
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
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

func (a *users) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetUserPasswordSQL, passwordHash, id.String())
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

// MarkEmailVerified flips the verification flag. Only pending accounts are
// promoted to active; suspended, disabled, and archived accounts keep their
// status so a verification link cannot lift an operator block.
func (a *users) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_email_verified = TRUE").
		Set("status = CASE WHEN status = ? THEN ? ELSE status END", AccountStatusPending, AccountStatusActive).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	return err
}

func (a *users) UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*User, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status, opts...)
}

func (a *users) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*User, error) {
	record := &User{
		ID:     id,
		Status: status,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(record)
		}
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *users) Suspend(ctx context.Context, actor ActorRef, user *User, opts ...TransitionOption) (*User, error) {
	return a.lifecycleMachine().Transition(ctx, actor, user, AccountStatusSuspended, opts...)
}

func (a *users) Reinstate(ctx context.Context, actor ActorRef, user *User, opts ...TransitionOption) (*User, error) {
	return a.lifecycleMachine().Transition(ctx, actor, user, AccountStatusActive, opts...)
}

// StatusUpdateOption allows callers to mutate the user record before persisting status changes.
type StatusUpdateOption func(*User)

// WithSuspendedAt sets the SuspendedAt timestamp during a status transition.
func WithSuspendedAt(at *time.Time) StatusUpdateOption {
	return func(u *User) {
		u.SuspendedAt = at
	}
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RolePlayer
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func (a *users) lifecycleMachine() AccountStateMachine {
	if a.stateMachine == nil {
		a.stateMachine = NewAccountStateMachine(a, a.stateMachineOptions...)
	}
	return a.stateMachine
}
