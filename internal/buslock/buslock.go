// Package buslock models the mutual-exclusion token guarding the shared
// transport to the storage device. The bus is shared with other peripherals,
// so the lock is created by the application and handed to every consumer;
// the store never creates one itself and never holds it across a return.
package buslock

import "sync"

// Locker is the scoped mutual exclusion over the shared bus. A plain
// *sync.Mutex satisfies it.
type Locker interface {
	Lock()
	Unlock()
}

// New returns a Locker suitable for a single-process deployment.
func New() Locker {
	return &sync.Mutex{}
}
