package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyEmailMessage struct {
	Token string `json:"token" example:"9f2c44...e1" doc:"Raw verification secret from the email link."`
}

func (e VerifyEmailMessage) Type() string { return "identity.email_verify" }

type ResendVerificationMessage struct {
	Kind  string `json:"kind" example:"academy" doc:"Identity kind: user or academy."`
	Email string `json:"email" example:"office@northside.fc" doc:"Account email."`
}

func (e ResendVerificationMessage) Type() string { return "identity.email_verify_resend" }

// VerifyEmailHandler consumes a verification ticket and marks the identity
// verified. Pending academies become active.
type VerifyEmailHandler struct {
	store    CredentialStore
	activity ActivitySink
	logger   Logger
}

func NewVerifyEmailHandler(store CredentialStore) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *VerifyEmailHandler) WithActivitySink(sink ActivitySink) *VerifyEmailHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	ticket, err := h.store.FindByTicketHash(ctx, TicketPurposeVerify, HashTicketSecret(event.Token))
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrInvalidOrExpiredTicket
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve verification ticket")
	}

	if ticket.Expired(time.Now()) {
		return ErrInvalidOrExpiredTicket
	}

	ref := IdentityRef{ID: ticket.IdentityID, Kind: ticket.IdentityKind}
	if err := h.store.MarkVerified(ctx, ref); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark identity as verified")
	}

	if err := h.store.ClearTicket(ctx, ticket.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification ticket")
	}

	h.recordActivity(ctx, ticket)

	return nil
}

func (h *VerifyEmailHandler) recordActivity(ctx context.Context, ticket *VerificationTicket) {
	event := ActivityEvent{
		EventType: ActivityEventEmailVerified,
		Actor: ActorRef{
			ID:   ticket.IdentityID.String(),
			Type: ticket.IdentityKind,
		},
		IdentityID: ticket.IdentityID.String(),
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during email verification: %v", err)
	}
}

// ResendVerificationHandler regenerates the verification ticket and resends
// the mail. Unlike the reset flow this endpoint reports unknown emails with
// a 404, which reveals registration state. Kept for parity with existing
// clients; front it with rate limiting.
type ResendVerificationHandler struct {
	store    CredentialStore
	notifier Notifier
	logger   Logger
}

func NewResendVerificationHandler(store CredentialStore) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		store:    store,
		notifier: noopNotifier{},
		logger:   defLogger{},
	}
}

func (h *ResendVerificationHandler) WithNotifier(n Notifier) *ResendVerificationHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	kind, ok := ParseKind(event.Kind)
	if !ok {
		return goerrors.New("unknown identity kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": event.Kind})
	}

	record, err := h.store.FindByEmail(ctx, kind, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve identity for verification resend")
	}

	// Already verified: nothing to do, report success.
	if record.Verified {
		return nil
	}

	ticket, secret, err := NewVerificationTicket(record.Ref(), TicketPurposeVerify)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create verification ticket")
	}

	if err := h.store.SetTicket(ctx, ticket); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification ticket")
	}

	if err := h.notifier.Send(ctx, record.Email, NotificationEmailVerification, map[string]any{
		"secret": secret,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver verification mail")
	}

	return nil
}
