package voting

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Poller periodically fetches the session, the full vote log and the student roster.
type Poller struct {
	svc      *Service
	interval time.Duration
}

func NewPoller(svc *Service) *Poller {
	interval := svc.conf.Voting.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{svc: svc, interval: interval}
}

// Fetch reads the session, all votes and the students concurrently.
func (p *Poller) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Session, err = p.svc.GetSession(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Votes, err = p.svc.Votes(gctx, VoteFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.Students, err = p.svc.listStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = p.svc.now()
	return snap, nil
}

// Run calls fn with a fresh snapshot immediately and then on every tick until ctx is done.
// Failed fetches are logged and skipped.
func (p *Poller) Run(ctx context.Context, fn func(Snapshot)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if snap, err := p.Fetch(ctx); err == nil {
			fn(snap)
		} else if ctx.Err() == nil {
			p.svc.logger.Warn("voting: poll failed", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
