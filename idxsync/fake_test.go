package idxsync_test

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dgs3/mdb-index-sync/topo"
)

// eventLog records the write calls of one or more fake clusters in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.events)
}

// fakeCluster is an in-memory deployment. Like a server, it creates a missing
// collection on index creation and treats an identical index as already existing.
type fakeCluster struct {
	name string
	dbs  map[string]map[string][]*topo.IndexSpecification

	listDatabasesErr   error
	listCollectionsErr map[string]error // by db
	listIndexesErr     map[string]error // by ns
	createErr          map[string]error // by ns + "." + index name
	dropErr            map[string]error // by ns

	listDatabasesCalls int
	listCollections    []string // db per call
	listIndexes        []string // ns per call
	created            []*topo.IndexSpecification

	events *eventLog
}

func newFakeCluster(name string, events *eventLog) *fakeCluster {
	if events == nil {
		events = &eventLog{}
	}

	return &fakeCluster{
		name:               name,
		dbs:                make(map[string]map[string][]*topo.IndexSpecification),
		listCollectionsErr: make(map[string]error),
		listIndexesErr:     make(map[string]error),
		createErr:          make(map[string]error),
		dropErr:            make(map[string]error),
		events:             events,
	}
}

// addCollection creates db.coll with the "_id_" index followed by indexes.
func (c *fakeCluster) addCollection(db, coll string, indexes ...*topo.IndexSpecification) {
	if c.dbs[db] == nil {
		c.dbs[db] = make(map[string][]*topo.IndexSpecification)
	}

	c.dbs[db][coll] = append([]*topo.IndexSpecification{idIndex()}, indexes...)
}

// indexNames returns the index names of db.coll in creation order, or nil if the
// collection does not exist.
func (c *fakeCluster) indexNames(db, coll string) []string {
	indexes, ok := c.dbs[db][coll]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(indexes))
	for _, index := range indexes {
		names = append(names, index.Name)
	}

	return names
}

func (c *fakeCluster) collectionNames(db string) []string {
	return slices.Sorted(maps.Keys(c.dbs[db]))
}

func (c *fakeCluster) ListDatabaseNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.listDatabasesCalls++

	if c.listDatabasesErr != nil {
		return nil, c.listDatabasesErr
	}

	return slices.Sorted(maps.Keys(c.dbs)), nil
}

func (c *fakeCluster) ListCollectionNames(ctx context.Context, db string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.listCollections = append(c.listCollections, db)

	if err := c.listCollectionsErr[db]; err != nil {
		return nil, err
	}

	return c.collectionNames(db), nil
}

func (c *fakeCluster) ListIndexes(
	ctx context.Context,
	db string,
	coll string,
) ([]*topo.IndexSpecification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ns := db + "." + coll
	c.listIndexes = append(c.listIndexes, ns)

	if err := c.listIndexesErr[ns]; err != nil {
		return nil, err
	}

	indexes, ok := c.dbs[db][coll]
	if !ok {
		return nil, mongo.CommandError{Code: 26, Name: "NamespaceNotFound"}
	}

	rv := make([]*topo.IndexSpecification, len(indexes))
	for i, index := range indexes {
		spec := *index
		spec.Namespace = ns
		spec.Version = 2
		rv[i] = &spec
	}

	return rv, nil
}

func (c *fakeCluster) CreateIndex(
	ctx context.Context,
	db string,
	coll string,
	index *topo.IndexSpecification,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ns := db + "." + coll
	c.events.add(c.name + " create " + ns + "." + index.Name)
	c.created = append(c.created, index)

	if err := c.createErr[ns+"."+index.Name]; err != nil {
		return err
	}

	if c.dbs[db] == nil {
		c.dbs[db] = make(map[string][]*topo.IndexSpecification)
	}

	if _, ok := c.dbs[db][coll]; !ok {
		c.dbs[db][coll] = []*topo.IndexSpecification{idIndex()}
	}

	for _, existing := range c.dbs[db][coll] {
		if existing.Name != index.Name {
			continue
		}

		if !reflect.DeepEqual(existing.KeysDocument, index.KeysDocument) ||
			existing.IsUnique() != index.IsUnique() {
			return mongo.CommandError{Code: 85, Name: "IndexOptionsConflict"}
		}

		return nil
	}

	c.dbs[db][coll] = append(c.dbs[db][coll], index)

	return nil
}

func (c *fakeCluster) DropIndexes(ctx context.Context, db, coll string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ns := db + "." + coll
	c.events.add(c.name + " drop " + ns)

	if err := c.dropErr[ns]; err != nil {
		return err
	}

	if _, ok := c.dbs[db][coll]; !ok {
		return mongo.CommandError{Code: 26, Name: "NamespaceNotFound"}
	}

	c.dbs[db][coll] = []*topo.IndexSpecification{idIndex()}

	return nil
}

func idIndex() *topo.IndexSpecification {
	return &topo.IndexSpecification{Name: topo.IDIndex, KeysDocument: bson.D{{Key: "_id", Value: int32(1)}}}
}

func newIndex(name string, keys bson.D) *topo.IndexSpecification {
	return &topo.IndexSpecification{Name: name, KeysDocument: keys}
}

func uniqueIndex(name string, keys bson.D) *topo.IndexSpecification {
	unique := true

	return &topo.IndexSpecification{Name: name, KeysDocument: keys, Unique: &unique}
}
