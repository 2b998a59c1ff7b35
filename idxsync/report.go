package idxsync

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dgs3/mdb-index-sync/log"
)

// Failure operations.
const (
	OpCreateIndex = "create"
	OpDropIndexes = "drop"
)

// Failure is a reported per-namespace error the run continued past.
type Failure struct {
	Op        string // OpCreateIndex or OpDropIndexes
	Namespace string // db.coll
	Index     string // empty for OpDropIndexes
	Err       error
}

// Report holds the counts of a run.
type Report struct {
	Databases          int64 // source databases visited
	Collections        int64 // source collections whose indexes were read
	CollectionsSkipped int64 // source collections not copied (missing, excluded, view)

	IndexesRead       int64 // index specifications read from the source
	IndexesCreated    int64 // createIndexes commands that succeeded
	IndexesSkipped    int64 // default and clustered indexes not sent
	IndexReadFailures int64 // collections whose indexes could not be listed

	CollectionsReset int64 // destination collections whose indexes were dropped

	Failures []Failure

	Elapsed time.Duration
}

// IndexFailures returns the number of indexes that failed to be created.
func (r *Report) IndexFailures() int64 {
	var n int64

	for _, f := range r.Failures {
		if f.Op == OpCreateIndex {
			n++
		}
	}

	return n
}

// ResetFailures returns the number of destination collections whose indexes failed to be
// dropped.
func (r *Report) ResetFailures() int64 {
	var n int64

	for _, f := range r.Failures {
		if f.Op == OpDropIndexes {
			n++
		}
	}

	return n
}

func (r *Report) addFailure(op, db, coll, index string, err error) {
	r.Failures = append(r.Failures, Failure{
		Op:        op,
		Namespace: db + "." + coll,
		Index:     index,
		Err:       err,
	})
}

// Log writes the summary of the run.
func (r *Report) Log(lg *log.Logger) {
	lg = lg.With(log.Elapsed(r.Elapsed))

	lg.Infof("Index sync summary: %s databases, %s collections (%s skipped), "+
		"%s indexes read, %s created, %s skipped, %s collections reset",
		humanize.Comma(r.Databases),
		humanize.Comma(r.Collections),
		humanize.Comma(r.CollectionsSkipped),
		humanize.Comma(r.IndexesRead),
		humanize.Comma(r.IndexesCreated),
		humanize.Comma(r.IndexesSkipped),
		humanize.Comma(r.CollectionsReset))

	if r.IndexReadFailures != 0 {
		lg.Warnf("Indexes of %s collections could not be listed (see debug logs)",
			humanize.Comma(r.IndexReadFailures))
	}

	if n := r.ResetFailures(); n != 0 {
		lg.Warnf("%s collections failed to reset", humanize.Comma(n))
	}

	if n := r.IndexFailures(); n != 0 {
		lg.Warnf("%s indexes failed to be created", humanize.Comma(n))
	}
}
