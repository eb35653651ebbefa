// Package auth provides the authentication core for the academy platform:
// JWT issuance and validation, role-guarded HTTP middleware, and the password
// lifecycle (registration, login, change, reset, email verification).
//
// Identities:
//   - Two identity kinds share the same flows: users (admin, coach, player,
//     scout, parent roles) and academies. Both carry an AccountStatus that is
//     persisted via Bun; statuses cover pending, active, suspended, disabled,
//     and archived.
//   - AccountStateMachine centralizes the transition graph, timestamp
//     handling, hooks, and persistence. Invoke Transition with ActorRef
//     metadata whenever an operator moves an account.
//
// Storage:
//   - All lifecycle commands consume the CredentialStore interface. A
//     Bun-backed implementation ships with the package (RepositoryManager),
//     but any store satisfying the interface can be injected.
//
// Notifications:
//   - Notifier delivers password reset and email verification mail. Reset
//     requests swallow delivery failures so the endpoint never reveals
//     whether an address is registered.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther, the
//     lifecycle commands, and the state machine. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package auth
