package api

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/david/deal-portal/internal/repository"
)

const snapshotKey = "deals"

var errRefreshThrottled = errors.New("refresh requested too soon")

// throttledError carries how long the caller should wait.
type throttledError struct {
	retryAfter time.Duration
}

func (e *throttledError) Error() string { return errRefreshThrottled.Error() }
func (e *throttledError) Unwrap() error { return errRefreshThrottled }

// snapshot returns the held deals, fetching them on first use.
func (s *Server) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	if v, ok := s.snapshots.Get(snapshotKey); ok {
		return v.(*repository.Snapshot), nil
	}
	return s.load(ctx)
}

// load fetches a fresh snapshot. Concurrent callers share one fetch, which is
// detached from any single request's cancellation and bounded by the
// repository timeout instead. A failed fetch leaves the held snapshot as is.
func (s *Server) load(ctx context.Context) (*repository.Snapshot, error) {
	v, err, _ := s.loads.Do(snapshotKey, func() (any, error) {
		snap, err := s.Repo.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.snapshots.Set(snapshotKey, snap, cache.NoExpiration)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*repository.Snapshot), nil
}

// reload is the manual refresh: throttled, then always a full re-read.
func (s *Server) reload(ctx context.Context) (*repository.Snapshot, error) {
	r := s.refresh.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return nil, &throttledError{retryAfter: delay}
	}
	return s.load(ctx)
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
