package kvstore

// Store is a synchronous string-keyed persistence substrate. It is the
// local analog of browser localStorage: flat keys, opaque string values,
// writes visible to other processes.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// VersionedStore is a Store that can report a monotonic data version which
// changes when another process writes to the underlying storage. Used by
// Watcher to detect external changes.
type VersionedStore interface {
	Store
	DataVersion() (int64, error)
}
