package rendezvous_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/rendezvous/rendezvous"
	"github.com/notorious-go/rendezvous/rendezvous/roundtest"
)

func TestFanOutReleasesEverySlotOnce(t *testing.T) {
	const n = 8
	f := rendezvous.NewFanOut(n)

	calls := make([]*roundtest.Call, n)
	for i := range n {
		calls[i] = roundtest.Go(func() { f.Wait(i) })
	}
	for _, c := range calls {
		c.Blocks(t, blockFor)
	}

	f.Notify()
	for _, c := range calls {
		c.Returns(t, returnsIn)
	}

	// A second wait on any slot in the same generation must not return.
	for i := range n {
		calls[i] = roundtest.Go(func() { f.Wait(i) })
	}
	for _, c := range calls {
		c.Blocks(t, blockFor)
	}
	f.Notify()
	for _, c := range calls {
		c.Returns(t, returnsIn)
	}
	assert.EqualValues(t, 2, f.Generation())
}

func TestFanOutLateWaiter(t *testing.T) {
	f := rendezvous.NewFanOut(2)
	f.Notify()
	// Both slots wait after the notification; neither may miss it.
	roundtest.Go(func() { f.Wait(0) }).Returns(t, returnsIn)
	roundtest.Go(func() { f.Wait(1) }).Returns(t, returnsIn)
}

func TestFanOutRounds(t *testing.T) {
	const (
		n      = 4
		rounds = 200
	)
	out := rendezvous.NewFanOut(n)
	in := rendezvous.NewFanIn(n)
	counts := make([]int, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				out.Wait(i)
				if out.IsTerminating() {
					return
				}
				counts[i]++
				in.Notify()
			}
		}()
	}
	for g := range rounds {
		out.Notify()
		in.Wait()
		for i := range n {
			require.Equal(t, g+1, counts[i], "slot %d", i)
		}
	}
	out.Terminate()
	in.Terminate()
	wg.Wait()
}

func TestFanOutNotifyBeforeConsumedPanics(t *testing.T) {
	f := rendezvous.NewFanOut(3)
	f.Notify()
	f.Wait(0)

	err := recoverError(func() { f.Notify() })
	require.ErrorIs(t, err, rendezvous.ErrUnconsumed)
	assert.Contains(t, err.Error(), "2 of 3 slots pending")

	// The failed Notify left the generation untouched.
	assert.EqualValues(t, 1, f.Generation())
	f.Wait(1)
	f.Wait(2)
	assert.NotPanics(t, f.Notify)
}

func TestFanOutNotifyAfterTerminateIsIgnored(t *testing.T) {
	f := rendezvous.NewFanOut(2)
	f.Notify()
	f.Terminate()
	// Unconsumed slots do not matter once the gate is shut down.
	assert.NotPanics(t, f.Notify)
	assert.EqualValues(t, 1, f.Generation())
}

func TestFanOutSlotRange(t *testing.T) {
	f := rendezvous.NewFanOut(2)
	for _, i := range []int{-1, 2, 100} {
		err := recoverError(func() { f.Wait(i) })
		assert.ErrorIs(t, err, rendezvous.ErrSlotRange, "slot %d", i)
	}
}

func TestNewPanicsOnNonPositiveSlots(t *testing.T) {
	constructors := map[string]func(){
		"FanOut":  func() { rendezvous.NewFanOut(0) },
		"FanIn":   func() { rendezvous.NewFanIn(-1) },
		"Barrier": func() { rendezvous.NewBarrier(0) },
	}
	for name, f := range constructors {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, recoverError(f), rendezvous.ErrParties)
		})
	}
}

// recoverError runs f and returns the error it panicked with, or nil.
func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return nil
}
