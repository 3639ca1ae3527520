package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes are the mounted paths, relative to the app root.
type AuthControllerRoutes struct {
	Login                string
	Register             string
	VerifyEmail          string
	PasswordReset        string
	PasswordResetConfirm string
	Me                   string
	MePassword           string
	MeEmail              string
}

// AuthController is the JSON API surface over the Accounts service.
type AuthController struct {
	Accounts *Accounts
	Logger   Logger
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:                "/api/auth/login",
			Register:             "/api/auth/register",
			VerifyEmail:          "/api/auth/verify-email",
			PasswordReset:        "/api/auth/reset-password",
			PasswordResetConfirm: "/api/auth/reset-password/confirm",
			Me:                   "/api/auth/me",
			MePassword:           "/api/auth/me/password",
			MeEmail:              "/api/auth/me/email",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts service in auth controller...")
	}

	return c
}

func WithControllerAccounts(accounts *Accounts) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Accounts = accounts
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")
	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register.post")
	app.Post(controller.Routes.VerifyEmail, controller.VerifyEmailPost).
		SetName("auth.verify-email.post")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("auth.pwd-reset.post")
	app.Post(controller.Routes.PasswordResetConfirm, controller.PasswordResetConfirmPost).
		SetName("auth.pwd-reset-confirm.post")

	app.Get(controller.Routes.Me, controller.MeGet).
		SetName("auth.me.get")
	app.Post(controller.Routes.MePassword, controller.MePasswordPost).
		SetName("auth.me-password.post")
	app.Post(controller.Routes.MeEmail, controller.MeEmailPost).
		SetName("auth.me-email.post")
}

// LoginPayload carries login credentials. Identifier is an email or
// username.
type LoginPayload struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Identifier, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

type RegisterPayload struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
	)
}

type TokenPayload struct {
	Token string `json:"token" form:"token"`
}

func (p TokenPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
	)
}

type PasswordResetPayload struct {
	Email string `json:"email" form:"email"`
}

func (p PasswordResetPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

type PasswordResetConfirmPayload struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"new_password" form:"new_password"`
}

func (p PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

type ChangePasswordPayload struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

func (p ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

type UpdateEmailPayload struct {
	Email string `json:"email" form:"email"`
}

func (p UpdateEmailPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

func (c *AuthController) LoginPost(ctx router.Context) error {
	payload, err := bindPayload[LoginPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	token, err := c.Accounts.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		c.Logger.Debug("login failed for %s: %v", payload.Identifier, err)
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"token": token})
}

func (c *AuthController) RegisterPost(ctx router.Context) error {
	payload, err := bindPayload[RegisterPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	user, err := c.Accounts.Register(ctx.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{"user": user})
}

func (c *AuthController) VerifyEmailPost(ctx router.Context) error {
	payload, err := bindPayload[TokenPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	if err := c.Accounts.VerifyEmail(ctx.Context(), payload.Token); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"verified": true})
}

func (c *AuthController) PasswordResetPost(ctx router.Context) error {
	payload, err := bindPayload[PasswordResetPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	if err := c.Accounts.RequestPasswordReset(ctx.Context(), payload.Email); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusAccepted, map[string]any{"status": "sent"})
}

func (c *AuthController) PasswordResetConfirmPost(ctx router.Context) error {
	payload, err := bindPayload[PasswordResetConfirmPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	if err := c.Accounts.ConfirmPasswordReset(ctx.Context(), payload.Token, payload.NewPassword); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"status": "password-changed"})
}

func (c *AuthController) MeGet(ctx router.Context) error {
	user, err := c.Accounts.CurrentUser(ctx.Context())
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"user": user})
}

func (c *AuthController) MePasswordPost(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrAuthenticationRequired)
	}

	payload, err := bindPayload[ChangePasswordPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	if err := c.Accounts.ChangePassword(ctx.Context(), principal.ID, payload.OldPassword, payload.NewPassword); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"status": "password-changed"})
}

func (c *AuthController) MeEmailPost(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrAuthenticationRequired)
	}

	payload, err := bindPayload[UpdateEmailPayload](ctx)
	if err != nil {
		return WriteError(ctx, err)
	}

	if err := c.Accounts.UpdateEmail(ctx.Context(), principal.ID, payload.Email); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{"status": "email-updated"})
}

type validatable interface {
	Validate() error
}

func bindPayload[P validatable](ctx router.Context) (P, error) {
	var payload P
	if err := ctx.Bind(&payload); err != nil {
		return payload, errors.Wrap(err, ErrUnableToParseData.Category, ErrUnableToParseData.Message).
			WithTextCode(ErrUnableToParseData.TextCode)
	}

	if err := payload.Validate(); err != nil {
		return payload, errors.Wrap(err, errors.CategoryValidation, "invalid payload")
	}

	return payload, nil
}
