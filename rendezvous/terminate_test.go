package rendezvous_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/rendezvous/rendezvous"
	"github.com/notorious-go/rendezvous/rendezvous/roundtest"
)

// blockingPrimitive builds a primitive on which t goroutines can block, and the
// blocking call each of them makes.
type blockingPrimitive struct {
	name  string
	build func(t int) (rendezvous.Terminator, func(i int))
}

var blockingPrimitives = []blockingPrimitive{
	{"Signal", func(int) (rendezvous.Terminator, func(int)) {
		s := rendezvous.NewSignal()
		return s, func(int) { s.Wait() }
	}},
	{"FanOut", func(t int) (rendezvous.Terminator, func(int)) {
		f := rendezvous.NewFanOut(t)
		return f, f.Wait
	}},
	{"FanIn", func(int) (rendezvous.Terminator, func(int)) {
		f := rendezvous.NewFanIn(2)
		return f, func(int) { f.Wait() }
	}},
	{"Barrier/symmetric", func(t int) (rendezvous.Terminator, func(int)) {
		// One participant more than there are goroutines, so nobody gets through.
		b := rendezvous.NewBarrier(t+1, rendezvous.WithStrategy(rendezvous.Symmetric))
		return b, b.Arrive
	}},
	{"Barrier/chained", func(t int) (rendezvous.Terminator, func(int)) {
		b := rendezvous.NewBarrier(t+1, rendezvous.WithStrategy(rendezvous.Chained))
		return b, b.Arrive
	}},
}

func TestTerminationLiveness(t *testing.T) {
	for _, p := range blockingPrimitives {
		for _, n := range []int{1, 3, 10} {
			t.Run(fmt.Sprintf("%s/T=%d", p.name, n), func(t *testing.T) {
				term, block := p.build(n)

				var g errgroup.Group
				for i := range n {
					g.Go(func() error {
						block(i)
						if !term.IsTerminating() {
							return fmt.Errorf("goroutine %d woke up without termination", i)
						}
						return nil
					})
				}

				// Terminate concurrently with goroutines still on their way in; the
				// ones that arrive late must return immediately as well.
				term.Terminate()
				roundtest.Go(func() { assert.NoError(t, g.Wait()) }).Returns(t, returnsIn)
			})
		}
	}
}

func TestTerminateIsIdempotent(t *testing.T) {
	for _, p := range blockingPrimitives {
		t.Run(p.name, func(t *testing.T) {
			term, block := p.build(3)
			call := roundtest.Go(func() { block(0) })

			var g errgroup.Group
			for range 4 {
				g.Go(func() error {
					term.Terminate()
					return nil
				})
			}
			assert.NoError(t, g.Wait())
			call.Returns(t, returnsIn)
			assert.True(t, term.IsTerminating())

			term.Terminate()
			assert.True(t, term.IsTerminating())
			roundtest.Go(func() { block(1) }).Returns(t, returnsIn)
		})
	}
}

func TestLatch(t *testing.T) {
	var l rendezvous.Latch
	assert.Equal(t, rendezvous.Active, l)
	assert.False(t, l.Tripped())
	assert.Equal(t, "active", l.String())

	assert.True(t, l.Trip())
	assert.False(t, l.Trip())
	assert.True(t, l.Tripped())
	assert.Equal(t, "terminated", l.String())
}
