package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Accounts is the credential lifecycle service: registration, login,
// password reset, and email verification. It owns no storage or transport;
// everything goes through the injected contracts.
type Accounts struct {
	store       IdentityStore
	tokens      TokenService
	mailer      Mailer
	logger      Logger
	hasher      PasswordAuthenticator
	frontendURL string
}

// NewAccounts creates the lifecycle service. Mailer, logger, and frontend
// URL are optional; operations that need mail fail with a configuration
// error when no mailer is set.
func NewAccounts(store IdentityStore, tokens TokenService) *Accounts {
	return &Accounts{
		store:  store,
		tokens: tokens,
		logger: defLogger{},
		hasher: BcryptHasher{},
	}
}

// WithMailer sets the outbound mail transport.
func (a *Accounts) WithMailer(mailer Mailer) *Accounts {
	a.mailer = mailer
	return a
}

// WithLogger sets the logger.
func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithPasswordAuthenticator swaps the password hashing scheme.
func (a *Accounts) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Accounts {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

// WithFrontendURL sets the base URL used to build reset and verification
// links, e.g. https://app.example.com.
func (a *Accounts) WithFrontendURL(frontendURL string) *Accounts {
	a.frontendURL = frontendURL
	return a
}

// Register creates an account with the default role and an unverified
// email. Duplicate usernames or emails are rejected before the hash is
// computed.
func (a *Accounts) Register(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" || email == "" {
		return nil, errors.New("username and email are required", errors.CategoryValidation)
	}

	if err := a.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}

	created, err := a.store.Save(ctx, user)
	if err != nil {
		// The availability pre-check races with concurrent registrations, so
		// the store's uniqueness violation still maps to a duplicate. Other
		// store failures keep their own identity.
		if isConflict(err) {
			return nil, errors.Wrap(err, ErrDuplicateIdentity.Category, ErrDuplicateIdentity.Message).
				WithTextCode(ErrDuplicateIdentity.TextCode)
		}
		return nil, err
	}

	a.logger.Info("registered user %s", created.ID)
	return created, nil
}

func isConflict(err error) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict
}

func (a *Accounts) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := a.store.FindByUsername(ctx, username); err == nil {
		return ErrDuplicateIdentity
	} else if !errors.IsNotFound(err) {
		return err
	}

	if _, err := a.store.FindByEmail(ctx, email); err == nil {
		return ErrDuplicateIdentity
	} else if !errors.IsNotFound(err) {
		return err
	}

	return nil
}

// Login verifies the credentials and returns a fresh access token.
func (a *Accounts) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := a.findByIdentifier(ctx, identifier)
	if err != nil {
		return "", err
	}

	if err := a.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return "", err
	}

	return a.tokens.Issue(user.Identity(), PurposeAccess)
}

func (a *Accounts) findByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user, err := a.store.FindByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	user, err = a.store.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if errors.IsNotFound(err) {
		return nil, ErrIdentityNotFound
	}
	return nil, err
}

// RequestPasswordReset issues a single-purpose reset token and mails the
// reset link. Exactly one message goes out per call; delivery failures
// surface to the caller instead of being swallowed.
func (a *Accounts) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return err
	}

	token, err := a.tokens.Issue(user.Identity(), PurposePasswordReset)
	if err != nil {
		return err
	}

	link := a.buildLink("/reset-password", token)
	return a.deliver(ctx, Message{
		To:      []string{user.Email},
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password:\n\n%s\n\nIf you did not request this, ignore this message.", user.Username, link),
	})
}

// ConfirmPasswordReset validates the reset token and stores the new
// password hash. Tokens minted for any other purpose are rejected.
func (a *Accounts) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := a.resolveTokenUser(ctx, token, PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := a.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	_, err = a.store.Save(ctx, user)
	if err == nil {
		a.logger.Info("password reset for user %s", user.ID)
	}
	return err
}

// ChangePassword verifies the current password before storing a new hash.
func (a *Accounts) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	user, err := a.findByID(ctx, id)
	if err != nil {
		return err
	}

	if err := a.hasher.ComparePasswordAndHash(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	hash, err := a.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	_, err = a.store.Save(ctx, user)
	return err
}

// RequestEmailVerification mails a verification link. Verified accounts are
// a no-op.
func (a *Accounts) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return err
	}

	if user.EmailVerified {
		return nil
	}

	token, err := a.tokens.Issue(user.Identity(), PurposeEmailVerification)
	if err != nil {
		return err
	}

	link := a.buildLink("/verify-email", token)
	return a.deliver(ctx, Message{
		To:      []string{user.Email},
		Subject: "Verify your email address",
		Body:    fmt.Sprintf("Hello %s,\n\nConfirm your email address by opening the link below:\n\n%s", user.Username, link),
	})
}

// VerifyEmail marks the token subject's email as verified.
func (a *Accounts) VerifyEmail(ctx context.Context, token string) error {
	user, err := a.resolveTokenUser(ctx, token, PurposeEmailVerification)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return nil
	}

	user.EmailVerified = true
	_, err = a.store.Save(ctx, user)
	return err
}

// UpdateEmail changes the account email. The new address starts unverified.
func (a *Accounts) UpdateEmail(ctx context.Context, id uuid.UUID, newEmail string) error {
	if newEmail == "" {
		return errors.New("email is required", errors.CategoryValidation)
	}

	user, err := a.findByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Email == newEmail {
		return nil
	}

	if existing, err := a.store.FindByEmail(ctx, newEmail); err == nil && existing.ID != user.ID {
		return ErrDuplicateIdentity
	} else if err != nil && !errors.IsNotFound(err) {
		return err
	}

	user.Email = newEmail
	user.EmailVerified = false
	_, err = a.store.Save(ctx, user)
	return err
}

// CurrentUser resolves the request principal to the stored record.
func (a *Accounts) CurrentUser(ctx context.Context) (*User, error) {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrAuthenticationRequired
	}
	return a.findByID(ctx, principal.ID)
}

func (a *Accounts) findByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return user, nil
}

// resolveTokenUser validates a single-purpose token and loads its subject.
func (a *Accounts) resolveTokenUser(ctx context.Context, token string, purpose TokenPurpose) (*User, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	if claims.Purpose() != purpose {
		return nil, ErrTokenPurpose
	}

	subject, err := uuid.Parse(claims.Subject())
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, "token subject is not a valid user id").
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	return a.findByID(ctx, subject)
}

func (a *Accounts) buildLink(path, token string) string {
	base := a.frontendURL
	return base + path + "?token=" + url.QueryEscape(token)
}

func (a *Accounts) deliver(ctx context.Context, msg Message) error {
	if a.mailer == nil {
		return errors.New("no mailer configured", errors.CategoryInternal)
	}

	start := time.Now()
	if err := a.mailer.Send(ctx, msg); err != nil {
		a.logger.Error("mail delivery to %s failed: %v", msg.To, err)
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return err
		}
		return errors.Wrap(err, errors.CategoryOperation, "mail delivery failed").
			WithTextCode(TextCodeMailDelivery)
	}

	a.logger.Debug("mail delivered to %s in %s", msg.To, time.Since(start))
	return nil
}
