package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController exposes the JSON auth endpoints. Responses use a
// {"success": true, ...} envelope; failures use {"error", "details"}.
type AuthController struct {
	Auther     *RouteAuthenticator
	Register   *RegisterIdentityHandler
	ChangePwd  *ChangePasswordHandler
	ResetInit  *InitializePasswordResetHandler
	ResetFinal *FinalizePasswordResetHandler
	Verify     *VerifyEmailHandler
	Resend     *ResendVerificationHandler
	Logger     Logger
	cfg        Config
}

// NewAuthController builds the controller with all lifecycle handlers wired
// to the same store and notifier.
func NewAuthController(auther *RouteAuthenticator, store CredentialStore, notifier Notifier, cfg Config) *AuthController {
	tokens := auther.auth.TokenService()

	return &AuthController{
		Auther:     auther,
		Register:   NewRegisterIdentityHandler(store, tokens).WithNotifier(notifier),
		ChangePwd:  NewChangePasswordHandler(store),
		ResetInit:  NewInitializePasswordResetHandler(store).WithNotifier(notifier),
		ResetFinal: NewFinalizePasswordResetHandler(store),
		Verify:     NewVerifyEmailHandler(store),
		Resend:     NewResendVerificationHandler(store).WithNotifier(notifier),
		Logger:     defLogger{},
		cfg:        cfg,
	}
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the auth endpoints under /auth.
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/auth/register", a.RegisterPost)
	group.Post("/auth/login", a.LoginPost)
	group.Post("/auth/password/change", a.PasswordChangePost, a.Auther.ProtectedRoute(a.cfg, nil))
	group.Post("/auth/password/forgot", a.PasswordForgotPost)
	group.Post("/auth/password/reset", a.PasswordResetPost)
	group.Post("/auth/verify-email", a.VerifyEmailPost)
	group.Post("/auth/verify-email/resend", a.ResendVerificationPost)
}

// RegisterRequest payload
type RegisterRequest struct {
	Kind      string `form:"kind" json:"kind"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Role      string `form:"role" json:"role"`
	Name      string `form:"name" json:"name"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
		validation.Field(&r.Kind, validation.In(KindUser, KindAcademy)),
	)
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	var resp *RegisterIdentityResponse
	msg := RegisterIdentityMessage{
		Kind:      payload.Kind,
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      payload.Role,
		Name:      payload.Name,
		OnResponse: func(r *RegisterIdentityResponse) {
			resp = r
		},
	}

	if err := a.Register.Execute(ctx.Context(), msg); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"success": true,
		"token":   resp.Token,
		"identity": map[string]any{
			"id":             resp.Identity.ID(),
			"email":          resp.Identity.Email(),
			"kind":           resp.Identity.Kind(),
			"role":           resp.Identity.Role(),
			"email_verified": identityEmailVerified(resp.Identity),
		},
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Kind       string `form:"kind" json:"kind"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetKind returns the identity kind, defaulting to user
func (r LoginRequest) GetKind() string {
	if r.Kind == "" {
		return KindUser
	}
	return r.Kind
}

// GetExtendedSession reports whether remember-me was requested
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
		validation.Field(&r.Kind, validation.In(KindUser, KindAcademy)),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

// PasswordChangeRequest payload
type PasswordChangeRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r PasswordChangeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, 100)),
	)
}

func (a *AuthController) PasswordChangePost(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.cfg.GetContextKey())
	if !ok {
		return a.respondError(ctx, ErrTokenMalformed)
	}

	identityID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return a.respondError(ctx, ErrTokenMalformed)
	}

	payload := new(PasswordChangeRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	msg := ChangePasswordMessage{
		Kind:            claims.Kind(),
		IdentityID:      identityID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}

	if err := a.ChangePwd.Execute(ctx.Context(), msg); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
	})
}

// PasswordForgotRequest payload
type PasswordForgotRequest struct {
	Email string `form:"email" json:"email"`
	Kind  string `form:"kind" json:"kind"`
}

// Validate will run validation rules
func (r PasswordForgotRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Kind, validation.In(KindUser, KindAcademy)),
	)
}

// PasswordForgotPost always answers 202 with the same body; the response
// must not reveal whether the email is registered.
func (a *AuthController) PasswordForgotPost(ctx router.Context) error {
	payload := new(PasswordForgotRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	msg := InitializePasswordResetMessage{
		Kind:  payload.Kind,
		Email: payload.Email,
	}

	if err := a.ResetInit.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("password reset initialization failed", "error", err)
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryBadInput {
			return a.respondError(ctx, err)
		}
		// Infrastructure failures still answer generically.
	}

	return ctx.JSON(fiber.StatusAccepted, map[string]any{
		"success": true,
		"message": "If the address is registered, a reset link is on its way",
	})
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
	)
}

func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	msg := FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	if err := a.ResetFinal.Execute(ctx.Context(), msg); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
	})
}

// VerifyEmailRequest payload
type VerifyEmailRequest struct {
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) VerifyEmailPost(ctx router.Context) error {
	payload := new(VerifyEmailRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	if err := a.Verify.Execute(ctx.Context(), VerifyEmailMessage{Token: payload.Token}); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
	})
}

// ResendVerificationRequest payload
type ResendVerificationRequest struct {
	Email string `form:"email" json:"email"`
	Kind  string `form:"kind" json:"kind"`
}

// Validate will run validation rules
func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Kind, validation.In(KindUser, KindAcademy)),
	)
}

func (a *AuthController) ResendVerificationPost(ctx router.Context) error {
	payload := new(ResendVerificationRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.respondError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, err)
	}

	msg := ResendVerificationMessage{
		Kind:  payload.Kind,
		Email: payload.Email,
	}

	if err := a.Resend.Execute(ctx.Context(), msg); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *AuthController) respondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	code := richErr.Code
	if code == 0 {
		code = categoryStatusCode(richErr.Category)
	}

	if code >= fiber.StatusInternalServerError {
		a.Logger.Error("auth controller error", "error", richErr.Message, "category", richErr.Category)
	}

	return ctx.JSON(code, map[string]any{
		"error":   richErr.Message,
		"details": richErr.TextCode,
	})
}

func (a *AuthController) respondValidation(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusBadRequest, map[string]any{
		"error":   "validation failed",
		"details": err.Error(),
	})
}

// identityEmailVerified reads the verification flag off identities that carry
// one. Identities without the flag report false, which matches every identity
// fresh out of registration.
func identityEmailVerified(identity Identity) bool {
	v, ok := identity.(interface{ EmailVerified() bool })
	return ok && v.EmailVerified()
}

func bindError(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "could not parse request payload").
		WithCode(errors.CodeBadRequest)
}

func categoryStatusCode(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
