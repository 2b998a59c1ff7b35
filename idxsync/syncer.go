package idxsync

import (
	"context"
	"time"

	"github.com/dgs3/mdb-index-sync/errors"
	"github.com/dgs3/mdb-index-sync/log"
	"github.com/dgs3/mdb-index-sync/metrics"
	"github.com/dgs3/mdb-index-sync/sel"
	"github.com/dgs3/mdb-index-sync/topo"
)

// ErrAlreadyRun is returned by [Syncer.Run] when called more than once.
var ErrAlreadyRun = errors.New("already run")

// Options configure a Syncer.
type Options struct {
	// Reserved are the names never traversed on either side. The zero value reserves
	// nothing; use [sel.DefaultReserved] for a real deployment.
	Reserved sel.Reserved
	// Filter restricts both the reset and the copy. Nil allows every namespace.
	Filter sel.NSFilter
	// PreserveIndexOptions sends the full index specification instead of the key pattern
	// and the name only.
	PreserveIndexOptions bool
}

// Syncer copies indexes from a source to a target deployment.
type Syncer struct {
	source Cluster
	target Cluster

	sourceNS *Enumerator
	targetNS *Enumerator
	filter   sel.NSFilter

	reader *Reader
	writer *Writer

	onStateChanged OnStateChangedFunc

	state  State
	report *Report
}

// New creates a new Syncer.
func New(source, target Cluster, opts Options) *Syncer {
	filter := opts.Filter
	if filter == nil {
		filter = sel.AllowAll
	}

	report := &Report{}

	return &Syncer{
		source:         source,
		target:         target,
		sourceNS:       NewEnumerator(source, opts.Reserved),
		targetNS:       NewEnumerator(target, opts.Reserved),
		filter:         filter,
		reader:         NewReader(source, report),
		writer:         NewWriter(target, opts.PreserveIndexOptions, report),
		onStateChanged: func(State) {},
		state:          StateInit,
		report:         report,
	}
}

// SetOnStateChanged set the f function to be called on each state change.
func (s *Syncer) SetOnStateChanged(f OnStateChangedFunc) {
	if f == nil {
		f = func(State) {}
	}

	s.onStateChanged = f
}

// State returns the current state.
func (s *Syncer) State() State {
	return s.state
}

// Report returns the counts accumulated so far.
func (s *Syncer) Report() *Report {
	return s.report
}

// Run drops the target indexes if removeDest is set, then copies the source indexes.
// The reset completes before the copy starts.
//
// Per-index failures are recorded in the report and do not fail the run. A listing
// failure or a canceled ctx stops the run with an error.
func (s *Syncer) Run(ctx context.Context, removeDest bool) (*Report, error) {
	if s.state != StateInit {
		return s.report, ErrAlreadyRun
	}

	startTime := time.Now()
	defer func() {
		s.report.Elapsed = time.Since(startTime)
		metrics.SetRunDuration(s.report.Elapsed)
	}()

	if removeDest {
		s.setState(ctx, StateReset)

		err := s.RemoveDestIndexes(ctx)
		if err != nil {
			s.setState(ctx, StateFailed)

			return s.report, errors.Wrap(err, "reset")
		}
	}

	s.setState(ctx, StateCopy)

	err := s.Copy(ctx)
	if err != nil {
		s.setState(ctx, StateFailed)

		return s.report, errors.Wrap(err, "copy")
	}

	s.setState(ctx, StateDone)
	metrics.SetLastRunSuccess(time.Now())

	return s.report, nil
}

func (s *Syncer) setState(ctx context.Context, state State) {
	log.Ctx(ctx).Infof("Index sync: %s -> %s", s.state, state)

	s.state = state
	s.onStateChanged(state)
}

// RemoveDestIndexes drops every index but "_id_" of each target collection allowed by
// the filter.
//
// A collection dropped concurrently is ignored. Other drop failures are recorded and the
// reset continues.
func (s *Syncer) RemoveDestIndexes(ctx context.Context) error {
	lg := log.Ctx(ctx)

	for db, err := range s.targetNS.Databases(ctx) {
		if err != nil {
			return errors.Wrap(err, "list target databases")
		}

		for coll, err := range s.targetNS.Collections(ctx, db) {
			if err != nil {
				return errors.Wrapf(err, "list target collections for %q", db)
			}

			if !s.filter(db, coll) {
				lg.Tracef("Skip excluded namespace %s.%s", db, coll)

				continue
			}

			err := s.target.DropIndexes(ctx, db, coll)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr //nolint:wrapcheck
				}

				if topo.IsNamespaceNotFound(err) {
					lg.With(log.NS(db, coll)).Debug("Target collection no longer exists")

					continue
				}

				lg.With(log.NS(db, coll)).Error(err, "Drop indexes")
				s.report.addFailure(OpDropIndexes, db, coll, "", err)
				metrics.IncResetFailures()

				continue
			}

			lg.With(log.NS(db, coll)).Debug("Indexes dropped")

			s.report.CollectionsReset++
			metrics.IncCollectionsReset()
		}
	}

	return nil
}

// Copy creates the indexes of every source collection on the target collection of the
// same name. Source collections missing on the target are skipped. No collection is
// created on the target.
func (s *Syncer) Copy(ctx context.Context) error {
	lg := log.Ctx(ctx)

	for db, err := range s.sourceNS.Databases(ctx) {
		if err != nil {
			return errors.Wrap(err, "list source databases")
		}

		targetColls := make(map[string]struct{})

		for coll, err := range s.targetNS.Collections(ctx, db) {
			if err != nil {
				return errors.Wrapf(err, "list target collections for %q", db)
			}

			targetColls[coll] = struct{}{}
		}

		s.report.Databases++

		for coll, err := range s.sourceNS.Collections(ctx, db) {
			if err != nil {
				return errors.Wrapf(err, "list source collections for %q", db)
			}

			if !s.filter(db, coll) {
				lg.Tracef("Skip excluded namespace %s.%s", db, coll)

				s.report.CollectionsSkipped++
				metrics.IncCollectionsSkipped(metrics.SkipReasonExcluded)

				continue
			}

			if _, ok := targetColls[coll]; !ok {
				lg.With(log.NS(db, coll)).Info("Skip collection missing on the target")

				s.report.CollectionsSkipped++
				metrics.IncCollectionsSkipped(metrics.SkipReasonMissingDestination)

				continue
			}

			err := s.copyCollection(ctx, db, coll)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Syncer) copyCollection(ctx context.Context, db, coll string) error {
	indexes := s.reader.Indexes(ctx, db, coll)
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	if len(indexes) == 0 {
		return nil
	}

	s.report.Collections++

	log.Ctx(ctx).With(log.NS(db, coll), log.Count(int64(len(indexes)))).
		Debug("Copy indexes")

	for _, index := range indexes {
		err := s.writer.Create(ctx, db, coll, index)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr //nolint:wrapcheck
			}
		}
	}

	return nil
}
