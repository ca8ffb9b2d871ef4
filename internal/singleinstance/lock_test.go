package singleinstance

import (
	"errors"
	"net"
	"testing"
)

// pickPort grabs a free loopback port so tests don't collide with anything.
func pickPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestAcquireIsExclusive(t *testing.T) {
	t.Parallel()
	port := pickPort(t)

	first, err := Acquire(port)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	if _, err := Acquire(port); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Acquire error = %v, want ErrAlreadyRunning", err)
	}
}

func TestReleaseFreesThePort(t *testing.T) {
	t.Parallel()
	port := pickPort(t)

	l, err := Acquire(port)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	again, err := Acquire(port)
	if err != nil {
		t.Fatalf("re-Acquire after Release: %v", err)
	}
	again.Release()
}

func TestNilLockRelease(t *testing.T) {
	t.Parallel()
	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("nil Release: %v", err)
	}
}
