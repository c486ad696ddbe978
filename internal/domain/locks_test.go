package domain

import (
	"errors"
	"testing"
	"time"
)

func TestKeyedLocksHeldKeyTimesOut(t *testing.T) {
	locks := newKeyedLocks()

	release, err := locks.Acquire("k", time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := locks.Acquire("k", 10*time.Millisecond); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("second acquire: want ErrAlreadyInProgress, got %v", err)
	}

	release()
	release2, err := locks.Acquire("k", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	locks := newKeyedLocks()

	r1, err := locks.Acquire("a", time.Second)
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer r1()

	r2, err := locks.Acquire("b", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire b while a held: %v", err)
	}
	r2()
}
