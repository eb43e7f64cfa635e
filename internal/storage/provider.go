package storage

import "manimrunner/internal/ports"

// Provider is the storage contract used by the executor. It is an
// alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
