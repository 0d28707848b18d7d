// Package storage persists the two filelocker indices behind repository
// interfaces, so the backing store can change without touching business
// logic.
//
// Both indices follow the same discipline: loaded fully at startup,
// rewritten in full as a snapshot on every mutation. Two backends exist:
//
//   - flat files: one JSON snapshot per index, replaced atomically via
//     write-temp-then-rename (the default, and the external on-disk contract)
//   - bbolt: both indices in one database file, snapshot semantics per
//     bucket, for installations that prefer a single transactional store
package storage
