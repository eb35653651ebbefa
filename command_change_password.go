package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type ChangePasswordMessage struct {
	Kind            string    `json:"kind" example:"user" doc:"Identity kind: user or academy."`
	IdentityID      uuid.UUID `json:"identity_id" example:"350399bc-c095-4bdc-a59c-3352d44848e4" doc:"Authenticated identity."`
	CurrentPassword string    `json:"current_password" example:"old_secret_word" doc:"Current password."`
	NewPassword     string    `json:"new_password" example:"new_secret_word" doc:"Replacement password."`
}

func (e ChangePasswordMessage) Type() string { return "identity.password_change" }

// ChangePasswordHandler rotates a password for an authenticated identity.
type ChangePasswordHandler struct {
	store    CredentialStore
	activity ActivitySink
	logger   Logger
}

func NewChangePasswordHandler(store CredentialStore) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *ChangePasswordHandler) WithActivitySink(sink ActivitySink) *ChangePasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	kind, ok := ParseKind(event.Kind)
	if !ok {
		return goerrors.New("unknown identity kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": event.Kind})
	}

	record, err := h.store.FindByID(ctx, IdentityRef{ID: event.IdentityID, Kind: kind})
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve identity for password change")
	}

	if err := ComparePasswordAndHash(event.CurrentPassword, record.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	// The new password is compared against the stored hash rather than the
	// submitted current password, so reuse is caught even when the two
	// submitted values differ in encoding.
	if err := ComparePasswordAndHash(event.NewPassword, record.PasswordHash); err == nil {
		return ErrSamePassword
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	if err := h.store.UpdatePassword(ctx, record.Ref(), hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	h.recordActivity(ctx, record)

	return nil
}

func (h *ChangePasswordHandler) recordActivity(ctx context.Context, record *CredentialRecord) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordChanged,
		Actor: ActorRef{
			ID:   record.ID.String(),
			Type: record.Kind,
		},
		IdentityID: record.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password change: %v", err)
	}
}
