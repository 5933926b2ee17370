// Package auth implements the stateless authentication and authorization
// layer of the bookmart API.
//
// Token issuance and verification live in the token subpackage, password
// hashing in the password subpackage. This package ties them together:
// CredentialAuthenticator checks login credentials against the principal
// store, RequestAuthenticator turns a bearer token into a per-request
// Identity, and Decide evaluates a route's policy against that identity.
//
// The layer fails closed: any policy/identity combination that is not
// explicitly allowed is denied, and roles are re-read from the principal
// store on every request so a revoked role takes effect before the token
// expires.
package auth
