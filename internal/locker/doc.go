// Package locker implements the encrypted object store: a per-user mapping
// from logical filenames to opaque ciphertext blobs on disk.
//
// Each upload allocates a globally-unique storage id, encrypts the source
// through the crypto engine and records (username, filename) -> id in the
// file index, which is persisted as a whole after every mutation. Blob
// removal is best effort; the index always wins over disk reclamation, so an
// orphaned blob is possible and is reclaimed by the separately-invoked
// Sweep.
//
// The file index and the credential index are independent maps with no
// cross-referential integrity between them: an index entry can outlive its
// owning credential.
package locker
