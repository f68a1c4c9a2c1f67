package rendezvous_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/rendezvous/rendezvous"
	"github.com/notorious-go/rendezvous/rendezvous/roundtest"
)

var strategies = []rendezvous.Strategy{rendezvous.Symmetric, rendezvous.Chained}

func TestBarrierMutualExclusionInTime(t *testing.T) {
	const rounds = 50
	for _, strategy := range strategies {
		for _, n := range []int{1, 2, 5, 16} {
			t.Run(fmt.Sprintf("%v/N=%d", strategy, n), func(t *testing.T) {
				b := rendezvous.NewBarrier(n, rendezvous.WithStrategy(strategy))
				require.Equal(t, strategy, b.Strategy())
				rec := roundtest.NewRecorder(n)

				var wg sync.WaitGroup
				for i := range n {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for g := range rounds {
							rec.Start(i, g)
							rec.Finish(i, g)
							b.Arrive(i)
							if b.IsTerminating() {
								t.Errorf("participant %d saw termination in round %d", i, g)
								return
							}
						}
					}()
				}
				wg.Wait()

				rec.Check(t)
				assert.EqualValues(t, rounds, b.Generation())
			})
		}
	}
}

func TestBarrierBlocksUntilAllArrive(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			b := rendezvous.NewBarrier(3, rendezvous.WithStrategy(strategy))
			first := roundtest.Go(func() { b.Arrive(0) })
			second := roundtest.Go(func() { b.Arrive(1) })
			first.Blocks(t, blockFor)
			assert.False(t, second.Returned())

			b.Arrive(2)
			first.Returns(t, returnsIn)
			second.Returns(t, returnsIn)
			assert.EqualValues(t, 1, b.Generation())
		})
	}
}

func TestBarrierEarlyReturnerJoinsNextGeneration(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			b := rendezvous.NewBarrier(2, rendezvous.WithStrategy(strategy))
			a := roundtest.Go(func() {
				b.Arrive(0)
				// Straight back in: this arrival belongs to generation 1 and must wait
				// for participant 1 to come back too.
				b.Arrive(0)
			})
			b.Arrive(1)
			a.Blocks(t, blockFor)
			b.Arrive(1)
			a.Returns(t, returnsIn)
			assert.EqualValues(t, 2, b.Generation())
		})
	}
}

func TestBarrierRearrivePanics(t *testing.T) {
	b := rendezvous.NewBarrier(3)
	// Slot 0 arrives twice concurrently. Whichever arrival is counted first blocks;
	// the other one must panic.
	errs := make(chan error, 2)
	for range 2 {
		go func() { errs <- recoverError(func() { b.Arrive(0) }) }()
	}
	assert.ErrorIs(t, <-errs, rendezvous.ErrRearrived)

	b.Terminate()
	assert.NoError(t, <-errs)
}

func TestBarrierSlotRange(t *testing.T) {
	for _, strategy := range strategies {
		b := rendezvous.NewBarrier(2, rendezvous.WithStrategy(strategy))
		assert.ErrorIs(t, recoverError(func() { b.Arrive(2) }), rendezvous.ErrSlotRange)
	}
}

func TestBarrierUnknownStrategyPanics(t *testing.T) {
	assert.Panics(t, func() { rendezvous.NewBarrier(2, rendezvous.WithStrategy(rendezvous.Strategy(7))) })
}
