package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	c := New()
	require.EqualValues(t, 0, c.Get(OutcomeMatched))

	c.Inc(OutcomeMatched)
	c.Inc(OutcomeMatched)
	c.Inc(OutcomeDuplicate)
	require.EqualValues(t, 2, c.Get(OutcomeMatched))
	require.EqualValues(t, 1, c.Get(OutcomeDuplicate))
	require.EqualValues(t, 0, c.Get(OutcomeExtractionFailed))

	snapshot := c.Snapshot()
	require.EqualValues(t, 2, snapshot[OutcomeMatched])

	// The snapshot is a copy.
	snapshot[OutcomeMatched] = 100
	require.EqualValues(t, 2, c.Get(OutcomeMatched))
}

func TestCountersConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc(OutcomeMatched)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1000, c.Get(OutcomeMatched))
}
