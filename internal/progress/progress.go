// Package progress prints elapsed time while a long operation runs.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reporter ticks on Interval and writes "<label>: <elapsed>" lines to Out.
type Reporter struct {
	Clock    clockwork.Clock
	Out      io.Writer
	Interval time.Duration
	Label    string
}

// Start launches the ticker goroutine. The returned stop function halts it,
// waits for the goroutine to exit and returns the total elapsed time.
func (r Reporter) Start() (stop func() time.Duration) {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	start := clock.Now()
	ticker := clock.NewTicker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				fmt.Fprintf(r.Out, "%s: %s elapsed\n", r.Label, clock.Since(start).Truncate(time.Second))
			}
		}
	}()

	var once sync.Once
	return func() time.Duration {
		once.Do(func() {
			ticker.Stop()
			close(done)
			wg.Wait()
		})
		return clock.Since(start)
	}
}
