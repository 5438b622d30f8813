package replica

import (
	"fmt"

	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

// SafeControlStep runs ControlStep and recovers from an
// InvariantViolationError panic, returning it as an error instead of
// crashing the calling goroutine. A simulator hosting many replicas in
// one process uses this so one replica's internal bug doesn't take down
// every other robot's tick. The replica is not marked as failed: a later
// call runs ControlStep on it again.
func (r *Replica) SafeControlStep() (err error) {
	defer func() {
		if p := recover(); p != nil {
			if iv, ok := p.(*swarmlist.InvariantViolationError); ok {
				err = fmt.Errorf("replica %d: %w", r.ownerID, iv)
				return
			}
			panic(p)
		}
	}()
	r.ControlStep()
	return nil
}
