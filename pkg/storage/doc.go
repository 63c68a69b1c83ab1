// Package storage persists captured posts and the crawl history ledger in
// PostgreSQL.
//
// The Store owns two tables:
//   - posts, with a UNIQUE constraint on post_url. The constraint is the
//     final dedup authority: a violating insert surfaces as
//     errors.ErrAlreadyExists and callers treat it as a lost race, not a
//     failure.
//   - crawl_history, one row appended per crawl attempt.
//
// On top of the crawl path the Store answers the operator queries: latest
// posts, new-post counts, per-account exports, aggregate statistics and
// table info. MemoryStore is an in-memory stand-in used by tests.
//
// Usage:
//
//	db, err := storage.Open(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	store := storage.NewStore(db)
//	if err := store.EnsureSchema(); err != nil {
//	    return err
//	}
package storage
