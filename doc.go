// Package auth is a stateless, token-based identity and access-control layer
// for HTTP services.
//
// Tokens:
//   - TokenService mints and verifies HS256 JWTs. Every token carries a
//     purpose claim (access, password_reset, email_verification) and is only
//     honored by the operation it was minted for.
//
// Request authentication:
//   - TokenInterceptor resolves a bearer token to a Principal and never
//     rejects a request; it only decides whether the request is anonymous.
//     RequireAccess enforces the composed RuleRegistry: feature modules
//     contribute rules, the host seals them at startup, and anything no rule
//     covers is denied.
//
// Credential lifecycle:
//   - Accounts implements registration, login, password reset, and email
//     verification over the IdentityStore, TokenService, and Mailer
//     contracts. A bun-backed store and an SMTP mailer ship in the package;
//     both contracts accept host implementations.
package auth
