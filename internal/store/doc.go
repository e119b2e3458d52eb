// Package store provides persistent storage for the bot using SQLite.
//
// # Data Models
//
//   - Note: free-text record owned by a single user
//   - Model: AI model registry entry; at most one row is active
//   - Character: persona (system-prompt fragment), seeded out of band
//
// Per-user persona selections live in the user_characters table, keyed by
// Telegram user id.
//
// # Invariants
//
// Exactly one model row is active at any time. The schema enforces "at most
// one" with a partial unique index over the active flag; "at least one" is
// restored lazily by GetActiveModel, which activates the lowest-id model when
// none is marked. SetActiveModel clears and sets the flag in one transaction
// so concurrent readers never observe zero or two active rows.
//
// Note that GetActiveModel and GetUserCharacter are therefore reads that may
// write: both bake a deterministic fallback into the read path.
//
// # SQLite Configuration
//
// Connection pragmas are carried in the DSN so every pooled connection gets
// them: WAL journal mode, enforced foreign keys, and busy_timeout=5000 to
// bound lock waits. Transactions begin IMMEDIATE (_txlock=immediate), taking
// the write lock up front instead of failing on a deferred upgrade.
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//   - ValidationError: bad caller input (unknown model/character id)
//   - StorageError: underlying engine failure, wraps the cause
//
// All methods accept context.Context for cancellation support.
//
// Tests use NewSQLiteStore with a file under t.TempDir(); an in-memory
// database would give each pooled connection its own copy.
package store
