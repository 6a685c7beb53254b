package uploader

import "sync/atomic"

// Counters tallies run progress. Owned by the uploader for the run's
// lifetime; submission goroutines update it only through its increment
// methods, so every field must be safe for concurrent use.
type Counters struct {
	scanned    atomic.Int64
	signatures atomic.Int64
	snapshots  atomic.Int64
	queued     atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
}

// Totals is a read-only snapshot of the counters.
type Totals struct {
	Scanned    int64
	Signatures int64
	Snapshots  int64
	Queued     int64
	Succeeded  int64
	Failed     int64
}

func (c *Counters) Totals() Totals {
	return Totals{
		Scanned:    c.scanned.Load(),
		Signatures: c.signatures.Load(),
		Snapshots:  c.snapshots.Load(),
		Queued:     c.queued.Load(),
		Succeeded:  c.succeeded.Load(),
		Failed:     c.failed.Load(),
	}
}
