// Package auth issues and verifies the signed session tokens behind
// mosaic's HTTP API.
//
// Accounts come from the [auth.users] config table with a role of admin or
// user plus an optional per-user filter expression; guest sessions, when
// enabled, carry the configured guest filter and the guest role. Tokens are
// HS256 JWTs transported in the auth_token cookie or an Authorization
// bearer header. The filter claim travels inside the token so the playlist
// endpoints never re-read config to scope a session.
package auth
