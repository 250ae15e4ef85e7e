package app

import (
	"context"
	"sync"
)

// SyncRunner runs passes in the background, one at a time. The HTTP layer
// triggers it and follows progress over the event bus; re-triggering while
// a pass is in flight is refused rather than queued.
type SyncRunner struct {
	svc *SyncService

	// baseCtx borne la durée de vie des passes (shutdown du process).
	baseCtx context.Context

	mu      sync.Mutex
	running bool
	last    *SyncReport
}

func NewSyncRunner(baseCtx context.Context, svc *SyncService) *SyncRunner {
	return &SyncRunner{svc: svc, baseCtx: baseCtx}
}

// Trigger starts a pass unless one is already running. Returns false when
// refused.
func (r *SyncRunner) Trigger() bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return false
	}
	r.running = true
	r.mu.Unlock()

	go func() {
		report, _ := r.svc.Run(r.baseCtx)
		r.mu.Lock()
		r.running = false
		r.last = &report
		r.mu.Unlock()
	}()
	return true
}

// RunOnce runs a pass synchronously (server -once mode). Refused while
// a background pass is active.
func (r *SyncRunner) RunOnce(ctx context.Context) (SyncReport, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return SyncReport{}, ErrConflict
	}
	r.running = true
	r.mu.Unlock()

	report, err := r.svc.Run(ctx)

	r.mu.Lock()
	r.running = false
	r.last = &report
	r.mu.Unlock()
	return report, err
}

// Status reports whether a pass is in flight plus the last finished report.
func (r *SyncRunner) Status() (bool, *SyncReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return r.running, nil
	}
	cp := *r.last
	return r.running, &cp
}
