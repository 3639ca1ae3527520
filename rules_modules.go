package auth

import "net/http"

// Stock rule contributions for the feature modules this library ships.
// Hosts compose these, plus their own, with NewRuleRegistry. Anything no
// contribution covers is denied.

// AuthModuleRules covers the credential lifecycle endpoints. The /me subtree
// is declared first so it wins over the public catch-all for the module.
func AuthModuleRules() RuleContribution {
	return RuleContribution{
		Module: "auth",
		Rules: []Rule{
			Authenticated("/api/auth/me", http.MethodGet),
			Authenticated("/api/auth/me/**"),
			Public("/api/auth/**", http.MethodPost),
		},
	}
}

// UserModuleRules gates the user resource: reads for any authenticated
// account, account management for admins.
func UserModuleRules() RuleContribution {
	return RuleContribution{
		Module: "users",
		Rules: []Rule{
			RoleIn("/api/users/admin/**", []UserRole{RoleAdmin, RoleSuperAdmin}),
			RoleIn("/api/users/**", GetAllRoles()),
		},
	}
}

// MailingModuleRules restricts outbound mail triggers to admin accounts.
func MailingModuleRules() RuleContribution {
	return RuleContribution{
		Module: "mailing",
		Rules: []Rule{
			RoleIn("/api/mailing/**", []UserRole{RoleAdmin, RoleSuperAdmin}),
		},
	}
}

// DefaultRuleContributions returns the stock policy for a host that mounts
// every module this library ships.
func DefaultRuleContributions() []RuleContribution {
	return []RuleContribution{
		AuthModuleRules(),
		UserModuleRules(),
		MailingModuleRules(),
	}
}
