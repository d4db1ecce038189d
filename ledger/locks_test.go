package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesOneKey(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("p")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Zero(t, k.len())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	unlockA := k.Lock("a")

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, k.len())
	unlockA()
	assert.Zero(t, k.len())
}
