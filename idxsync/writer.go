package idxsync

import (
	"context"

	"github.com/dgs3/mdb-index-sync/log"
	"github.com/dgs3/mdb-index-sync/metrics"
	"github.com/dgs3/mdb-index-sync/topo"
)

// Writer creates indexes on the destination.
type Writer struct {
	cluster         Cluster
	preserveOptions bool
	report          *Report
}

// NewWriter returns a Writer over c recording into report. With preserveOptions unset only
// the key pattern and the name of an index are sent.
func NewWriter(c Cluster, preserveOptions bool, report *Report) *Writer {
	return &Writer{cluster: c, preserveOptions: preserveOptions, report: report}
}

// Create creates index on db.coll. The "_id_" index and clustered indexes exist with the
// collection and are skipped.
//
// index is not modified. A failure is logged, recorded in the report and returned.
func (w *Writer) Create(ctx context.Context, db, coll string, index *topo.IndexSpecification) error {
	lg := log.Ctx(ctx).With(log.NS(db, coll), log.Index(index.Name))

	if index.IsDefault() || index.IsClustered() {
		lg.Trace("Skip index created with the collection")

		w.report.IndexesSkipped++
		metrics.IncIndexesSkipped()

		return nil
	}

	spec := index.KeyAndName()
	if w.preserveOptions {
		spec = index.WithOptions()
	}

	err := w.cluster.CreateIndex(ctx, db, coll, spec)
	if err != nil {
		if topo.IsIndexConflict(err) {
			lg.Error(err, "Index conflicts with an existing destination index")
		} else {
			lg.Error(err, "Create index")
		}

		w.report.addFailure(OpCreateIndex, db, coll, index.Name, err)
		metrics.IncIndexCreateFailures()

		return err
	}

	lg.Debug("Index created")

	w.report.IndexesCreated++
	metrics.IncIndexesCreated()

	return nil
}
