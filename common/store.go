package common

// KeyValueStore persists small string values (the session credential) so
// they survive a process restart. Backends live in common/store.
//
// Get reports found=false, err=nil for a missing key. Remove of a missing
// key is not an error.
type KeyValueStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
