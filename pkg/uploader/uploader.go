// Package uploader schedules upload units under a bounded permit pool and
// aggregates their outcomes.
package uploader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"
	"k8s.io/utils/clock"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/fileutil"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/resolver"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/scanner"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

const (
	// DefaultLimit bounds in-flight submissions. The repository service and
	// the local file-handle budget both degrade under unbounded concurrency.
	DefaultLimit = 5

	// DefaultDrainTimeout bounds the final wait for outstanding submissions.
	DefaultDrainTimeout = 30 * time.Second
)

// Submitter performs the HTTP call for one unit.
type Submitter interface {
	Upload(ctx context.Context, format types.Format, repo string, unit types.UploadUnit) types.Outcome
}

type Option struct {
	Repository   string
	Format       types.Format
	Limit        int64
	DrainTimeout time.Duration
	Progress     bool
}

type Uploader struct {
	submitter Submitter
	scanner   *scanner.Scanner
	resolver  *resolver.Resolver

	root         string
	repository   string
	format       types.Format
	limit        *semaphore.Weighted
	drainTimeout time.Duration
	progress     bool

	counters Counters
	clock    clock.Clock
	logger   *slog.Logger
}

func New(submitter Submitter, root string, opt Option) *Uploader {
	if opt.Limit <= 0 {
		opt.Limit = DefaultLimit
	}
	if opt.DrainTimeout <= 0 {
		opt.DrainTimeout = DefaultDrainTimeout
	}

	return &Uploader{
		submitter:    submitter,
		scanner:      scanner.New(root, opt.Format),
		resolver:     resolver.New(root),
		root:         root,
		repository:   opt.Repository,
		format:       opt.Format,
		limit:        semaphore.NewWeighted(opt.Limit),
		drainTimeout: opt.DrainTimeout,
		progress:     opt.Progress,
		clock:        clock.RealClock{},
		logger:       slog.Default().With(slog.String("component", "uploader")),
	}
}

// Summary is the final tally of one run.
type Summary struct {
	Totals
	TimedOut int64
}

// Run walks the tree, schedules each resolved unit as soon as a permit is
// free and waits for outstanding submissions to finish. Unit-local failures
// are recorded and never stop sibling uploads; only walk and setup errors
// abort. The drain wait is bounded: units still outstanding when it elapses
// are reported as timed out, their requests are not cancelled.
func (u *Uploader) Run(ctx context.Context) (Summary, error) {
	var bar *pb.ProgressBar
	if u.progress {
		count, err := fileutil.Count(u.root)
		if err != nil {
			return Summary{}, xerrors.Errorf("count error: %w", err)
		}
		bar = pb.StartNew(count)
	}

	var wg sync.WaitGroup
	scanErr := u.scanner.Scan(ctx,
		func(_ types.FileEntry, class types.FileClass) {
			u.counters.scanned.Add(1)
			switch class {
			case types.ClassSignature:
				u.counters.signatures.Add(1)
			case types.ClassSnapshotMember:
				u.counters.snapshots.Add(1)
			}
			if bar != nil {
				bar.Increment()
			}
		},
		func(g types.Group) error {
			unit := u.prepare(g)
			if unit == nil {
				return nil
			}
			u.counters.queued.Add(1)

			// Acquisition suspends the walk until a permit frees up.
			if err := u.limit.Acquire(ctx, 1); err != nil {
				return xerrors.Errorf("semaphore acquire error: %w", err)
			}
			wg.Add(1)
			go func(unit types.UploadUnit) {
				defer u.limit.Release(1)
				defer wg.Done()
				u.record(unit, u.submitter.Upload(ctx, u.format, u.repository, unit))
			}(*unit)
			return nil
		})

	timedOut := u.drain(&wg)
	if bar != nil {
		bar.Finish()
	}
	if scanErr != nil {
		return Summary{Totals: u.counters.Totals(), TimedOut: timedOut}, scanErr
	}

	summary := Summary{Totals: u.counters.Totals(), TimedOut: timedOut}
	u.logger.Info("Upload run completed",
		slog.Int64("scanned", summary.Scanned),
		slog.Int64("queued", summary.Queued),
		slog.Int64("succeeded", summary.Succeeded),
		slog.Int64("failed", summary.Failed))
	return summary, nil
}

// Counters exposes a read-only snapshot for progress reporting.
func (u *Uploader) Counters() Totals {
	return u.counters.Totals()
}

// prepare turns one scanned group into an upload unit, or nil when the group
// is skipped.
func (u *Uploader) prepare(g types.Group) *types.UploadUnit {
	if !u.format.Maven() {
		f := g.Files[0]
		return &types.UploadUnit{Assets: []types.Asset{{Path: f.Path}}}
	}

	unit, outcome := u.resolver.Resolve(g)
	if unit == nil {
		u.logger.Warn("Skipping component directory",
			slog.String("category", string(outcome.Category)),
			slog.String("reason", outcome.Message))
		return nil
	}
	return unit
}

func (u *Uploader) record(unit types.UploadUnit, outcome types.Outcome) {
	switch outcome.Status {
	case types.Succeeded:
		u.counters.succeeded.Add(1)
		if unit.Coordinate.Complete() {
			u.logger.Info("Uploaded component",
				slog.String("groupId", unit.Coordinate.GroupID),
				slog.String("artifactId", unit.Coordinate.ArtifactID),
				slog.String("version", unit.Coordinate.Version),
				slog.Int("assets", len(unit.Assets)))
		} else {
			u.logger.Info("Uploaded asset", slog.String("path", unit.Assets[0].Path))
		}
	case types.Failed:
		u.counters.failed.Add(1)
		u.logger.Error("Upload failed",
			slog.String("path", unit.Assets[0].Path),
			slog.String("category", string(outcome.Category)),
			slog.String("error", outcome.Message))
	}
}

// drain waits for outstanding submissions, bounded by the drain timeout.
// Returns the number of units still outstanding when the wait was abandoned.
func (u *Uploader) drain(wg *sync.WaitGroup) int64 {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := u.clock.NewTimer(u.drainTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return 0
	case <-timer.C():
		t := u.counters.Totals()
		outstanding := t.Queued - t.Succeeded - t.Failed
		u.logger.Warn("Timed out waiting for in-flight uploads",
			slog.Int64("outstanding", outstanding),
			slog.Duration("timeout", u.drainTimeout))
		return outstanding
	}
}
