package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Kind       string `json:"kind" example:"user" doc:"Identity kind: user or academy."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "identity.password_reset" }

// InitializePasswordResetResponse is intentionally shape-identical whether or
// not the email exists. Delivered is for the caller's logs only and must not
// reach the HTTP response.
type InitializePasswordResetResponse struct {
	Success   bool
	Delivered bool
}

// InitializePasswordResetHandler starts a reset. The response never reveals
// whether the address is registered: unknown emails, ticket failures, and
// mail failures all produce the same success payload.
type InitializePasswordResetHandler struct {
	store    CredentialStore
	notifier Notifier
	activity ActivitySink
	logger   Logger
}

func NewInitializePasswordResetHandler(store CredentialStore) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		store:    store,
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithNotifier(n Notifier) *InitializePasswordResetHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{Success: true}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	kind, ok := ParseKind(event.Kind)
	if !ok {
		return goerrors.New("unknown identity kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": event.Kind})
	}

	record, err := h.store.FindByEmail(ctx, kind, event.Email)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve identity for password reset")
		}
		// Unknown email: same response, nothing stored, nothing sent.
		h.respond(event, resp)
		return nil
	}

	ticket, secret, err := NewVerificationTicket(record.Ref(), TicketPurposeReset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset ticket")
	}

	if err := h.store.SetTicket(ctx, ticket); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset ticket")
	}

	if err := h.notifier.Send(ctx, record.Email, NotificationPasswordReset, map[string]any{
		"secret": secret,
	}); err != nil {
		h.logger.Warn("password reset mail delivery failed", "error", err)
	} else {
		resp.Delivered = true
	}

	h.recordActivity(ctx, record)
	h.respond(event, resp)

	return nil
}

func (h *InitializePasswordResetHandler) respond(event InitializePasswordResetMessage, resp *InitializePasswordResetResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, record *CredentialRecord) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetRequest,
		Actor: ActorRef{
			ID:   record.ID.String(),
			Type: record.Kind,
		},
		IdentityID: record.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset request: %v", err)
	}
}
