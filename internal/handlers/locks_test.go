package handlers

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGameLocks_SerializesPerGame(t *testing.T) {
	locks := newGameLocks()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(id)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("Expected counter 50, got %d", counter)
	}
	if n := locks.size(); n != 0 {
		t.Errorf("Expected no lock entries left, got %d", n)
	}
}

func TestGameLocks_IndependentGames(t *testing.T) {
	locks := newGameLocks()
	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	// A different game must not block.
	unlockB := locks.Lock(uuid.New())
	unlockB()

	if n := locks.size(); n != 1 {
		t.Errorf("Expected one held lock, got %d", n)
	}
}
