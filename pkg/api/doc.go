// Package api defines the JSON contracts between the corrcal daemon and its
// clients:
//
//   - State: an engine state plus the interpretation of its result
//   - Session: a session summary as returned by the session endpoints
//   - CalculateRequest and CreateSessionRequest: request bodies
//
// These types are shared by daemon and client code to keep both sides of the
// wire consistent.
package api
