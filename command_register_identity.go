package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

type RegisterIdentityMessage struct {
	Kind       string `json:"kind" example:"user" doc:"Identity kind: user or academy."`
	Email      string `json:"email" example:"ada.keeper@example.com" doc:"Login email."`
	Password   string `json:"password" example:"some_secret_word" doc:"Cleartext password."`
	FirstName  string `json:"first_name" example:"Ada" doc:"User first name."`
	LastName   string `json:"last_name" example:"Keeper" doc:"User last name."`
	Role       string `json:"role" example:"coach" doc:"User role, defaults to player."`
	Name       string `json:"name" example:"Northside FC" doc:"Academy display name."`
	UseHashid  bool
	OnResponse func(resp *RegisterIdentityResponse)
}

func (e RegisterIdentityMessage) Type() string { return "identity.register" }

type RegisterIdentityResponse struct {
	Identity Identity
	Token    string
}

// RegisterIdentityHandler creates users and academies. Users come out active
// and immediately usable; academies start pending and receive an email
// verification ticket.
type RegisterIdentityHandler struct {
	store    CredentialStore
	tokens   TokenService
	notifier Notifier
	activity ActivitySink
	logger   Logger
}

func NewRegisterIdentityHandler(store CredentialStore, tokens TokenService) *RegisterIdentityHandler {
	return &RegisterIdentityHandler{
		store:    store,
		tokens:   tokens,
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *RegisterIdentityHandler) WithNotifier(n Notifier) *RegisterIdentityHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

func (h *RegisterIdentityHandler) WithActivitySink(sink ActivitySink) *RegisterIdentityHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RegisterIdentityHandler) WithLogger(logger Logger) *RegisterIdentityHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterIdentityHandler) Execute(ctx context.Context, event RegisterIdentityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during identity registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterIdentityHandler) execute(ctx context.Context, event RegisterIdentityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	kind, ok := ParseKind(event.Kind)
	if !ok {
		return goerrors.New("unknown identity kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": event.Kind})
	}

	if _, err := h.store.FindByEmail(ctx, kind, event.Email); err == nil {
		return ErrDuplicateEmail
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing identity")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	var identity Identity
	switch kind {
	case KindAcademy:
		identity, err = h.registerAcademy(ctx, event, hash)
	default:
		identity, err = h.registerUser(ctx, event, hash)
	}

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "identity registration failed")
	}

	token, err := h.tokens.Issue(identity, false)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue token for new identity")
	}

	h.recordActivity(ctx, identity)

	if event.OnResponse != nil {
		event.OnResponse(&RegisterIdentityResponse{
			Identity: identity,
			Token:    token,
		})
	}

	return nil
}

func (h *RegisterIdentityHandler) registerUser(ctx context.Context, event RegisterIdentityMessage, hash string) (Identity, error) {
	role := UserRole(event.Role)
	if event.Role == "" {
		role = RolePlayer
	}
	if !role.IsValid() {
		return nil, goerrors.New("unknown or invalid role", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"role": event.Role})
	}

	user := &User{
		Email:        event.Email,
		FirstName:    event.FirstName,
		LastName:     event.LastName,
		Role:         role,
		PasswordHash: hash,
		Status:       AccountStatusActive,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}
	}

	created, err := h.store.CreateUser(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	return authIdentity{
		id:       created.ID.String(),
		email:    created.Email,
		kind:     KindUser,
		role:     string(created.Role),
		status:   created.Status,
		verified: created.EmailVerified,
	}, nil
}

func (h *RegisterIdentityHandler) registerAcademy(ctx context.Context, event RegisterIdentityMessage, hash string) (Identity, error) {
	academy := &Academy{
		Email:        event.Email,
		Name:         event.Name,
		PasswordHash: hash,
		Status:       AccountStatusPending,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			academy.ID = id
		}
	}

	created, err := h.store.CreateAcademy(ctx, academy)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create academy")
	}

	h.sendVerification(ctx, created)

	return authIdentity{
		id:       created.ID.String(),
		email:    created.Email,
		kind:     KindAcademy,
		status:   created.Status,
		verified: created.EmailVerified,
	}, nil
}

// sendVerification is best-effort during registration; a failed mail leaves
// the academy pending and the resend endpoint covers recovery.
func (h *RegisterIdentityHandler) sendVerification(ctx context.Context, academy *Academy) {
	ticket, secret, err := NewVerificationTicket(IdentityRef{ID: academy.ID, Kind: KindAcademy}, TicketPurposeVerify)
	if err != nil {
		h.logger.Error("failed to create verification ticket", "error", err)
		return
	}

	if err := h.store.SetTicket(ctx, ticket); err != nil {
		h.logger.Error("failed to store verification ticket", "error", err)
		return
	}

	if err := h.notifier.Send(ctx, academy.Email, NotificationEmailVerification, map[string]any{
		"secret": secret,
		"name":   academy.Name,
	}); err != nil {
		h.logger.Warn("verification mail delivery failed", "error", err)
	}
}

func (h *RegisterIdentityHandler) recordActivity(ctx context.Context, identity Identity) {
	event := ActivityEvent{
		EventType: ActivityEventRegistration,
		Actor: ActorRef{
			ID:   identity.ID(),
			Type: identity.Kind(),
		},
		IdentityID: identity.ID(),
		Metadata: map[string]any{
			"kind": identity.Kind(),
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}
