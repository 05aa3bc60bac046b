package service

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// TournamentLocks serializes bracket mutations per tournament inside this process. Entries are
// never evicted.
type TournamentLocks struct {
	locks *xsync.MapOf[int64, *sync.Mutex]
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: xsync.NewMapOf[int64, *sync.Mutex]()}
}

// Lock blocks until the tournament is free and returns the matching unlock.
func (l *TournamentLocks) Lock(tournamentID int64) func() {
	mu, _ := l.locks.LoadOrCompute(tournamentID, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}
