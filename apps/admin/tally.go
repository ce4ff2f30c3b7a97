package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
)

// tally prints the results once, or keeps reprinting them on every poll until interrupted.
func (cli *commandLine) tally(scope voting.Scope, watch bool) error {
	ctx := context.Background()
	if !watch {
		res, err := cli.votingSvc.Results(ctx, scope)
		if err != nil {
			return err
		}
		return cli.printResults(res)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var last voting.Snapshot
	voting.NewPoller(cli.votingSvc).Run(ctx, func(snap voting.Snapshot) {
		res, changed := nextResults(last, snap, scope)
		if !changed {
			return
		}
		last = snap
		_ = cli.printResults(res)
	})
	return nil
}

// nextResults tallies snap, reporting false when nothing shown changed since last.
func nextResults(last, snap voting.Snapshot, scope voting.Scope) (voting.Results, bool) {
	unchanged := !last.FetchedAt.IsZero() &&
		len(snap.Votes) == len(last.Votes) &&
		snap.Session.IsActive == last.Session.IsActive &&
		snap.Session.SessionID == last.Session.SessionID &&
		sameRoster(snap.Students, last.Students)
	if unchanged {
		return voting.Results{}, false
	}
	return voting.Results{
		Session: snap.Session,
		Scope:   scope,
		Entries: voting.Tally(snap.Students, snap.Votes, scope, snap.Session.SessionID),
	}, true
}

func sameRoster(a, b []user.User) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func (cli *commandLine) printResults(res voting.Results) error {
	state := "closed"
	if res.Session.IsActive {
		state = "open"
	}
	fmt.Fprintf(cli.out, "session %s (%s), scope %s\n", res.Session.SessionID, state, res.Scope)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTUDENT\tVOTES")
	for i, e := range res.Entries {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, e.Name, e.Count)
	}
	return w.Flush()
}
