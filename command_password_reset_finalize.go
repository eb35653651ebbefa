package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token" example:"9f2c44...e1" doc:"Raw reset secret from the email link."`
	Password string `json:"password" example:"some_secret_word" doc:"Replacement password."`
}

func (e FinalizePasswordResetMessage) Type() string { return "identity.password_reset_finalize" }

// FinalizePasswordResetHandler consumes a reset ticket. Tickets are single
// use: the row is deleted inside the same flow that rotates the hash, so a
// replayed secret fails the lookup.
type FinalizePasswordResetHandler struct {
	store    CredentialStore
	activity ActivitySink
	logger   Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(store CredentialStore) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	ticket, err := h.store.FindByTicketHash(ctx, TicketPurposeReset, HashTicketSecret(event.Token))
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrInvalidOrExpiredTicket
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset ticket")
	}

	if ticket.Expired(time.Now()) {
		return ErrInvalidOrExpiredTicket
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	ref := IdentityRef{ID: ticket.IdentityID, Kind: ticket.IdentityKind}
	if err := h.store.UpdatePassword(ctx, ref, passwordHash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	if err := h.store.ClearTicket(ctx, ticket.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume password reset ticket")
	}

	h.recordActivity(ctx, ticket)

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, ticket *VerificationTicket) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Actor: ActorRef{
			ID:   ticket.IdentityID.String(),
			Type: ticket.IdentityKind,
		},
		IdentityID: ticket.IdentityID.String(),
		Metadata: map[string]any{
			"ticket_id": ticket.ID.String(),
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset: %v", err)
	}
}
