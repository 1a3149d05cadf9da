package core

import (
	"fmt"
	"sync"
)

// Runtime identifiers for scene nodes. Slots freed by released ids are
// reused before the table grows.
var (
	ownersMu sync.Mutex
	owners   []interface{}
)

func IdentifierAcquireNewID(owner interface{}) uint32 {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if len(owners) == 0 {
		owners = make([]interface{}, 100)
	}
	for i := range owners {
		// Existing free slot. Take it.
		if owners[i] == nil {
			owners[i] = owner
			return uint32(i)
		}
	}

	// No free slots, push a new one.
	owners = append(owners, owner)
	return uint32(len(owners) - 1)
}

func IdentifierReleaseID(id uint32) error {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if len(owners) == 0 {
		return fmt.Errorf("IdentifierReleaseID called before any id was acquired; nothing was done")
	}
	if id >= uint32(len(owners)) {
		return fmt.Errorf("IdentifierReleaseID: id '%d' out of range (max=%d); nothing was done", id, len(owners))
	}

	// Zero out the entry, making it available for reuse.
	owners[id] = nil
	return nil
}
