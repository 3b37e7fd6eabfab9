package eventhub

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// sweeper periodically evicts shared-state snapshots and event-number
// bookkeeping that every registered extension has already processed past.
// Built on a bare cron.Cron, narrowed to a single fixed-interval job since
// the hub has no job-store or per-job schedule concept to offer, just one
// recurring maintenance task.
type sweeper struct {
	cron *cron.Cron
}

// newSweeper builds (but does not start) a sweeper that invokes sweep every
// interval. A non-positive interval disables the sweeper; newSweeper returns
// nil in that case and the caller must treat a nil *sweeper as a no-op.
func newSweeper(interval time.Duration, sweep func(), logger Logger) *sweeper {
	if interval <= 0 {
		return nil
	}
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, sweep); err != nil {
		logger.Error("failed to schedule shared-state sweep", "interval", interval, "error", err)
		return nil
	}
	return &sweeper{cron: c}
}

func (s *sweeper) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
}

func (s *sweeper) Stop() {
	if s == nil {
		return
	}
	<-s.cron.Stop().Done()
}
