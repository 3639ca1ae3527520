package auth

import (
	"github.com/goliatone/go-router"
)

// Kit bundles the pieces a host application needs: the token service, the
// lifecycle service, and the request middlewares, all built from one Config.
type Kit struct {
	config        Config
	tokens        TokenService
	accounts      *Accounts
	registry      *RuleRegistry
	interceptor   router.MiddlewareFunc
	logger        Logger
	contributions []RuleContribution
}

// KitOption customizes a Kit during construction.
type KitOption func(*Kit)

// WithKitLogger sets the logger shared by the kit's components.
func WithKitLogger(logger Logger) KitOption {
	return func(k *Kit) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// WithKitMailer sets the outbound mail transport for lifecycle mail.
func WithKitMailer(mailer Mailer) KitOption {
	return func(k *Kit) {
		k.accounts.WithMailer(mailer)
	}
}

// WithKitRules replaces the default access policy.
func WithKitRules(contributions ...RuleContribution) KitOption {
	return func(k *Kit) {
		k.contributions = contributions
	}
}

// NewKit assembles the auth stack from a Config and an identity store.
// The default access policy is DefaultRuleContributions; override it with
// WithKitRules.
func NewKit(cfg Config, store IdentityStore, opts ...KitOption) (*Kit, error) {
	kit := &Kit{
		config:        cfg,
		logger:        defLogger{},
		contributions: DefaultRuleContributions(),
	}

	tokens, err := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		kit.logger,
	)
	if err != nil {
		return nil, err
	}
	kit.tokens = tokens

	kit.accounts = NewAccounts(store, tokens).
		WithFrontendURL(cfg.GetFrontendURL())

	for _, opt := range opts {
		opt(kit)
	}

	registry, err := NewRuleRegistry(kit.contributions...)
	if err != nil {
		return nil, err
	}
	kit.registry = registry

	kit.accounts.WithLogger(kit.logger)

	// The interceptor and the lifecycle service share the identity store so
	// both observe the same records.
	kit.interceptor = TokenInterceptor(tokens, store, InterceptorConfig{
		ContextKey: cfg.GetContextKey(),
		AuthScheme: cfg.GetAuthScheme(),
		Logger:     kit.logger,
	})

	return kit, nil
}

// Tokens returns the token service.
func (k *Kit) Tokens() TokenService { return k.tokens }

// Accounts returns the credential lifecycle service.
func (k *Kit) Accounts() *Accounts { return k.accounts }

// Rules returns the access policy registry.
func (k *Kit) Rules() *RuleRegistry { return k.registry }

// Interceptor returns the token authentication middleware.
func (k *Kit) Interceptor() router.MiddlewareFunc { return k.interceptor }

// Guard returns the access control middleware backed by the kit's registry.
func (k *Kit) Guard() router.MiddlewareFunc { return RequireAccess(k.registry) }

// RegisterRoutes mounts the auth HTTP surface on a router.
func RegisterKitRoutes[T any](app router.Router[T], kit *Kit) {
	RegisterAuthRoutes(app,
		WithControllerAccounts(kit.accounts),
		WithControllerLogger(kit.logger),
	)
}
