// Package store persists each firm's rule set durably in SQLite and mirrors
// durable state in a bounded in-memory cache.
//
// Firm identity is normalized (case-folded, internal whitespace collapsed to
// a single underscore) into the storage key, so "Meridian Capital" and
// "meridian  CAPITAL" address the same record. A save replaces the firm's
// prior record atomically; readers never observe a partial rule set.
//
// The cache is FIFO-bounded: when full, the oldest-inserted entry is evicted
// regardless of access recency. A background sweeper, owned by the Store and
// started exactly once, deletes durable records older than the TTL from both
// SQLite and the cache. A load racing a sweep sees either the data or
// not-found, never a torn read.
package store
