// Package engine implements the bucketed key-value store backing the
// roster daemon: an in-memory map guarded by a RW mutex, with per-bucket
// JSON files written atomically in the background.
package engine

import "errors"

var (
	// ErrBucketNotFound is returned when a requested bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrKeyNotFound is returned when a requested key does not exist within a bucket.
	ErrKeyNotFound = errors.New("key not found")
)

// Store is the contract between the engine and everything above it.
// The record store facade is the only production consumer; it owns the
// bucket layout and no other component reads the engine directly.
type Store interface {
	// Get retrieves the value stored under bucket/key.
	Get(bucket, key string) (any, error)
	// Set stores a value under bucket/key, creating the bucket as needed.
	Set(bucket, key string, val any) error
	// Delete removes a key from a bucket. Deleting an absent key is a no-op.
	Delete(bucket, key string) error

	// Buckets returns the IDs of all buckets in the store.
	Buckets() ([]string, error)
	// Keys returns all keys within a bucket.
	Keys(bucket string) ([]string, error)
	// DumpBucket returns a copy of every key and value in a bucket.
	DumpBucket(bucket string) (map[string]any, error)
}
