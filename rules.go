package auth

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/goliatone/go-errors"
)

// Requirement is what a matched rule demands from the request principal.
type Requirement int

const (
	// RequirePublic allows the request regardless of principal
	RequirePublic Requirement = iota
	// RequireAuthenticated allows any request with a principal
	RequireAuthenticated
	// RequireRole allows principals whose role is in the rule's set
	RequireRole
)

// Rule binds a path pattern and optional method set to a requirement.
// Patterns use glob syntax with `/` as separator: `/api/users/*` matches one
// segment, `/api/users/**` matches the subtree (including the bare prefix).
type Rule struct {
	Pattern     string
	Methods     []string
	Requirement Requirement
	Roles       []UserRole
}

// Public builds a rule that allows anyone. No methods means all methods.
func Public(pattern string, methods ...string) Rule {
	return Rule{Pattern: pattern, Methods: methods, Requirement: RequirePublic}
}

// Authenticated builds a rule that requires a principal.
func Authenticated(pattern string, methods ...string) Rule {
	return Rule{Pattern: pattern, Methods: methods, Requirement: RequireAuthenticated}
}

// RoleIn builds a rule that requires a principal holding one of the roles.
func RoleIn(pattern string, roles []UserRole, methods ...string) Rule {
	return Rule{Pattern: pattern, Methods: methods, Requirement: RequireRole, Roles: roles}
}

// RuleContribution is a feature module's slice of the access policy. Modules
// expose these as pure values; the host composes them at startup.
type RuleContribution struct {
	Module string
	Rules  []Rule
}

type compiledRule struct {
	rule   Rule
	g      glob.Glob
	prefix string // pattern minus a trailing /**, so the bare prefix matches too
}

func (c compiledRule) matches(path, method string) bool {
	if len(c.rule.Methods) > 0 {
		found := false
		for _, m := range c.rule.Methods {
			if strings.EqualFold(m, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.g.Match(path) {
		return true
	}
	return c.prefix != "" && path == c.prefix
}

// RuleRegistry is the compiled, ordered access policy. It is immutable after
// construction and safe for concurrent reads without locking.
type RuleRegistry struct {
	rules []compiledRule
}

// NewRuleRegistry compiles contributions into a registry. Contributions are
// ordered alphabetically by module name so the composed policy does not
// depend on registration order; within a module, declaration order holds.
func NewRuleRegistry(contribs ...RuleContribution) (*RuleRegistry, error) {
	sorted := make([]RuleContribution, len(contribs))
	copy(sorted, contribs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Module < sorted[j].Module
	})

	registry := &RuleRegistry{}
	for _, contrib := range sorted {
		for _, rule := range contrib.Rules {
			compiled, err := compileRule(rule)
			if err != nil {
				return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid rule pattern").
					WithMetadata(map[string]any{
						"module":  contrib.Module,
						"pattern": rule.Pattern,
					})
			}
			registry.rules = append(registry.rules, compiled)
		}
	}

	return registry, nil
}

func compileRule(rule Rule) (compiledRule, error) {
	g, err := glob.Compile(rule.Pattern, '/')
	if err != nil {
		return compiledRule{}, err
	}

	methods := make([]string, len(rule.Methods))
	for i, m := range rule.Methods {
		methods[i] = strings.ToUpper(m)
	}
	rule.Methods = methods

	compiled := compiledRule{rule: rule, g: g}
	if trimmed, found := strings.CutSuffix(rule.Pattern, "/**"); found {
		compiled.prefix = trimmed
	}
	return compiled, nil
}

// Decide returns the first rule matching the request, in policy order.
func (r *RuleRegistry) Decide(path, method string) (Rule, bool) {
	for _, c := range r.rules {
		if c.matches(path, method) {
			return c.rule, true
		}
	}
	return Rule{}, false
}

// Authorize evaluates the policy for a request. A nil error means allow.
// Requests no rule covers are denied with ErrNoMatchingRule.
func (r *RuleRegistry) Authorize(path, method string, principal *Principal) error {
	rule, ok := r.Decide(path, method)
	if !ok {
		return ErrNoMatchingRule
	}

	switch rule.Requirement {
	case RequirePublic:
		return nil
	case RequireAuthenticated:
		if principal == nil {
			return ErrAuthenticationRequired
		}
		return nil
	case RequireRole:
		if principal == nil {
			return ErrAuthenticationRequired
		}
		for _, role := range rule.Roles {
			if principal.Role == role {
				return nil
			}
		}
		return ErrInsufficientRole
	default:
		return ErrNoMatchingRule
	}
}
