/*
Package idxsync copies index definitions from a source MongoDB deployment to a destination
deployment.

The package includes the following components:

  - Enumerator: lists the databases and collections of a deployment, without the reserved
    names.

  - Reader: reads the index specifications of a source collection.

  - Writer: creates one index on a destination collection.

  - Syncer: drives an optional reset of the destination indexes followed by the copy, and
    accumulates a Report.

Everything runs sequentially on the caller's goroutine.
*/
package idxsync

import (
	"context"

	"github.com/dgs3/mdb-index-sync/topo"
)

// Cluster is the set of operations an index sync needs from a deployment.
// [topo.Cluster] implements it over a driver client.
type Cluster interface {
	ListDatabaseNames(ctx context.Context) ([]string, error)
	ListCollectionNames(ctx context.Context, db string) ([]string, error)
	ListIndexes(ctx context.Context, db, coll string) ([]*topo.IndexSpecification, error)
	CreateIndex(ctx context.Context, db, coll string, index *topo.IndexSpecification) error
	DropIndexes(ctx context.Context, db, coll string) error
}

// State represents the state of a Syncer.
type State string

const (
	// StateInit indicates that the run has not started.
	StateInit State = "init"
	// StateReset indicates that the destination indexes are being dropped.
	StateReset State = "reset"
	// StateCopy indicates that the indexes are being copied.
	StateCopy State = "copy"
	// StateDone indicates that the run has completed.
	StateDone State = "done"
	// StateFailed indicates that the run has stopped on a fatal error.
	StateFailed State = "failed"
)

type OnStateChangedFunc func(newState State)
