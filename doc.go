// Package authclient implements the client half of token authentication for
// a catalog backend: the session state machine, durable session storage, and
// an HTTP transport that attaches credentials and reacts to expiry.
//
// Lifecycle:
//   - Initialize consults the SessionStore exactly once at startup. Until it
//     resolves, guards report a neutral loading decision instead of a
//     redirect, so protected content never flashes for an unknown state.
//   - Login/Register validate their payloads locally, call the backend,
//     verify the returned identity is complete, persist the session, then
//     promote the state machine to authenticated. An incomplete identity is
//     a failed operation with no partial writes.
//   - Logout clears local state unconditionally; a backend failure is still
//     surfaced but never strands the client in an authenticated state.
//   - Any 401 response observed by AuthTransport clears storage, demotes the
//     state machine through the regular transition path, and signals
//     subscribers. The failing call still receives its original error.
//
// Session stores:
//   - MemorySessionStore for tests and hosts that manage persistence.
//   - store/file keeps a JSON document on disk keyed token/user.
//   - store/bunstore keeps the same keys in a local sqlite table via Bun.
//
// RouteGuard exposes the loading/allow/redirect contract for embedded UI
// servers (go-router and fiber flavors). ExpiryController turns session-end
// transitions into navigation through an injected Navigator, keeping
// redirects out of the transport layer.
package authclient
