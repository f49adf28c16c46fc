package models

// NewTestOpsDataStore creates a new in-memory ops data store for testing
func NewTestOpsDataStore() OpsDataStore {
	return NewInMemoryOpsDataStore()
}
