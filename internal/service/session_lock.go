package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// sessionLocks serializes actions per session with a fixed set of striped
// mutexes. Two sessions may share a stripe.
type sessionLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *sessionLocks) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
