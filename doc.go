// Package identity implements the core of a small identity service:
// stateless bearer-token issuance and decoding, a generic entity repository
// over Bun, and the thin account/customer services composed on top.
//
// Token codec:
//   - Issue signs {name, jti, role} claims with a symmetric key injected once
//     at construction. Tokens expire after a configurable number of hours
//     (24 by default) and are never persisted.
//   - ExtractUsername and ExtractRole read claims from an Authorization
//     header value without verifying the signature. They are convenience
//     helpers for handlers running behind the route guard, which has already
//     validated the token; never use them as an authorization check on their
//     own.
//
// Repositories:
//   - repository.Repository[T] provides Insert/Attach/Update/Delete/GetAll/
//     GetDetail/CheckExists over any Bun model. Deletes are staged and only
//     flushed by an explicit Commit, so callers control the commit point.
//
// Services:
//   - AccountService owns sign-up (including the minimum-age rule), login,
//     role assignment, lockout-based deactivation, and password reset flows.
//   - CustomerService owns the customer profile merge and detail projection.
package identity
