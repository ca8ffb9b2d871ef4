// Package singleinstance guards against two runner processes polling the
// same roster. Concurrent loops would race on load/modify/save and corrupt
// scheduling state, so the second instance must bail out before touching
// anything.
package singleinstance

import (
	"errors"
	"fmt"
	"net"
)

// ErrAlreadyRunning reports that another instance holds the lock port.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is a loopback TCP bind used as a host-wide mutex. The OS releases it
// on any kind of process death, so there is no stale-lockfile problem.
type Lock struct {
	ln net.Listener
}

// Acquire binds the lock port. The listener accepts nothing; holding the
// bind is the whole mechanism.
func Acquire(port int) (*Lock, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
	}
	return &Lock{ln: ln}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
