package usecases_test

import (
	"sync"
	"testing"

	"github.com/aitorfdez/flyover/internal/core/usecases"
)

func TestGeneration_NextInvalidatesPrevious(t *testing.T) {
	var g usecases.Generation

	first := g.Next()
	if !g.IsCurrent(first) {
		t.Fatal("fresh generation should be current")
	}

	second := g.Next()
	if g.IsCurrent(first) {
		t.Error("old generation still current after Next")
	}
	if !g.IsCurrent(second) {
		t.Error("new generation not current")
	}
	if second <= first {
		t.Errorf("generations must increase: %d then %d", first, second)
	}
}

func TestGeneration_ConcurrentNext(t *testing.T) {
	var g usecases.Generation
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Next()
		}()
	}
	wg.Wait()

	if got := g.Current(); got != 50 {
		t.Errorf("expected 50 generations, got %d", got)
	}
}
