package idxsync

import (
	"context"

	"github.com/dgs3/mdb-index-sync/log"
	"github.com/dgs3/mdb-index-sync/metrics"
	"github.com/dgs3/mdb-index-sync/topo"
)

// Reader reads index specifications from the source.
type Reader struct {
	cluster Cluster
	report  *Report
}

// NewReader returns a Reader over c recording into report.
func NewReader(c Cluster, report *Report) *Reader {
	return &Reader{cluster: c, report: report}
}

// Indexes returns the index specifications of db.coll.
//
// A listing failure is not returned: the collection is treated as having no indexes. The
// cause is logged at debug level and counted.
func (r *Reader) Indexes(ctx context.Context, db, coll string) []*topo.IndexSpecification {
	indexes, err := r.cluster.ListIndexes(ctx, db, coll)
	if err != nil {
		lg := log.Ctx(ctx).With(log.NS(db, coll))

		switch {
		case topo.IsNamespaceNotFound(err):
			lg.DebugErr(err, "Source collection no longer exists")
			r.report.CollectionsSkipped++
			metrics.IncCollectionsSkipped(metrics.SkipReasonMissingSource)

		case topo.IsCommandNotSupportedOnView(err):
			lg.DebugErr(err, "Source namespace is a view")
			r.report.CollectionsSkipped++
			metrics.IncCollectionsSkipped(metrics.SkipReasonView)

		default:
			lg.DebugErr(err, "List indexes")
			r.report.IndexReadFailures++
			metrics.IncIndexReadFailures()
		}

		return nil
	}

	r.report.IndexesRead += int64(len(indexes))
	metrics.AddIndexesRead(len(indexes))

	return indexes
}
