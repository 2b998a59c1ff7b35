package idxsync

import (
	"context"
	"iter"

	"github.com/dgs3/mdb-index-sync/sel"
)

// Enumerator lists the namespaces of a deployment that are not reserved.
//
// Each range over a returned sequence issues a new listing, so a sequence reflects the
// deployment at the time it is ranged over. A listing error is yielded once and ends the
// sequence.
type Enumerator struct {
	cluster  Cluster
	reserved sel.Reserved
}

// NewEnumerator returns an Enumerator over c skipping the names in reserved.
func NewEnumerator(c Cluster, reserved sel.Reserved) *Enumerator {
	return &Enumerator{cluster: c, reserved: reserved}
}

// Databases yields the names of the databases that are not reserved.
func (e *Enumerator) Databases(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := e.cluster.ListDatabaseNames(ctx)
		if err != nil {
			yield("", err)

			return
		}

		for _, name := range names {
			if e.reserved.IsReservedDatabase(name) {
				continue
			}

			if !yield(name, nil) {
				return
			}
		}
	}
}

// Collections yields the names of the collections of db that are not reserved.
func (e *Enumerator) Collections(ctx context.Context, db string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := e.cluster.ListCollectionNames(ctx, db)
		if err != nil {
			yield("", err)

			return
		}

		for _, name := range names {
			if e.reserved.IsReservedCollection(name) {
				continue
			}

			if !yield(name, nil) {
				return
			}
		}
	}
}
