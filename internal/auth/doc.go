// Package auth implements bearer-token authentication for the HTTP surface.
//
// Tokens are JWTs carrying a subject, roles, and scopes. The observer role
// can read the schema, mode table, and telemetry; the operator role can also
// resolve and dispatch commands. HS256 with a shared secret covers tests and
// closed deployments; RS256 with a PEM public key covers everything else.
package auth
