// Package iohistory persists diagnosis sessions and cause scores.
package iohistory

import (
	"sync"

	"github.com/physqa/rundiag/internal/contract"
)

// HistoryStoreManager manages the process-wide HistoryStore instance.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the diagnosis HistoryStore.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
