package replica

import "github.com/arenafleet/swarmlist/pkg/swarmlist"

// tick runs the aging and owner-advance steps of the tick engine, in the
// contractual order from spec section 4.D:
//
//  1. age every non-owner entry with a nonzero countdown; an entry whose
//     countdown reaches zero here stops counting toward num_active.
//  2. advance the owner's Lamport clock. The owner's countdown is held
//     at its maximum and is never decremented by aging.
//  3. statistics (highest_tti, tti_sum, num_updates) are recorded inside
//     Table.Update, not here -- see swarmlist/table.go.
//  4. step 1 is skipped entirely when aging is disabled, so learned
//     entries remain active forever once learned.
func (r *Replica) tick() {
	r.table.WithWriteLock(func(w *swarmlist.TableWriter) {
		owner := w.OwnerID()

		if r.table.AgingEnabled() {
			for i := 0; i < w.Len(); i++ {
				e := w.EntryAt(i)
				if e.ID() == owner {
					continue
				}
				if e.TimeToInactive() == 0 {
					continue
				}
				e.Tick()
				if e.TimeToInactive() == 0 {
					w.DecrementActive()
				}
			}
		}

		for i := 0; i < w.Len(); i++ {
			e := w.EntryAt(i)
			if e.ID() == owner {
				e.IncrementLamport()
				break
			}
		}
	})
}
