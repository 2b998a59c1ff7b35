package idxsync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dgs3/mdb-index-sync/errors"
	"github.com/dgs3/mdb-index-sync/idxsync"
	"github.com/dgs3/mdb-index-sync/topo"
)

// mockCluster records the calls made on a Cluster.
type mockCluster struct {
	mock.Mock
}

func (m *mockCluster) ListDatabaseNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	return args.Get(0).([]string), args.Error(1) //nolint:forcetypeassert
}

func (m *mockCluster) ListCollectionNames(ctx context.Context, db string) ([]string, error) {
	args := m.Called(ctx, db)

	return args.Get(0).([]string), args.Error(1) //nolint:forcetypeassert
}

func (m *mockCluster) ListIndexes(
	ctx context.Context,
	db string,
	coll string,
) ([]*topo.IndexSpecification, error) {
	args := m.Called(ctx, db, coll)

	return args.Get(0).([]*topo.IndexSpecification), args.Error(1) //nolint:forcetypeassert
}

func (m *mockCluster) CreateIndex(
	ctx context.Context,
	db string,
	coll string,
	index *topo.IndexSpecification,
) error {
	return m.Called(ctx, db, coll, index).Error(0)
}

func (m *mockCluster) DropIndexes(ctx context.Context, db, coll string) error {
	return m.Called(ctx, db, coll).Error(0)
}

func sourceEmailIndex() *topo.IndexSpecification {
	unique := true
	ttl := int64(86400)

	return &topo.IndexSpecification{
		Name:               "email_idx",
		Namespace:          "app.users",
		KeysDocument:       bson.D{{Key: "email", Value: int32(1)}},
		Version:            2,
		Unique:             &unique,
		ExpireAfterSeconds: &ttl,
	}
}

func TestWriterSendsKeyAndName(t *testing.T) {
	t.Parallel()

	c := &mockCluster{}
	c.On("CreateIndex", mock.Anything, "app", "users",
		mock.MatchedBy(func(spec *topo.IndexSpecification) bool {
			raw, err := bson.Marshal(spec)
			if err != nil {
				return false
			}

			var doc bson.D
			if err := bson.Unmarshal(raw, &doc); err != nil {
				return false
			}

			// only key pattern and name; uniqueness and TTL are not reproduced
			return assert.ObjectsAreEqual(bson.D{
				{Key: "name", Value: "email_idx"},
				{Key: "key", Value: bson.D{{Key: "email", Value: int32(1)}}},
			}, doc)
		})).Return(nil).Once()

	report := &idxsync.Report{}
	w := idxsync.NewWriter(c, false, report)

	src := sourceEmailIndex()
	require.NoError(t, w.Create(t.Context(), "app", "users", src))

	c.AssertExpectations(t)
	assert.EqualValues(t, 1, report.IndexesCreated)
	assert.Equal(t, "app.users", src.Namespace)
	assert.True(t, src.IsUnique())
}

func TestWriterPreservesOptions(t *testing.T) {
	t.Parallel()

	c := &mockCluster{}
	c.On("CreateIndex", mock.Anything, "app", "users",
		mock.MatchedBy(func(spec *topo.IndexSpecification) bool {
			return spec.Name == "email_idx" &&
				spec.IsUnique() &&
				spec.ExpireAfterSeconds != nil && *spec.ExpireAfterSeconds == 86400 &&
				spec.Namespace == "" &&
				spec.Version == 0
		})).Return(nil).Once()

	w := idxsync.NewWriter(c, true, &idxsync.Report{})
	require.NoError(t, w.Create(t.Context(), "app", "users", sourceEmailIndex()))

	c.AssertExpectations(t)
}

func TestWriterSkipsIndexesCreatedWithCollection(t *testing.T) {
	t.Parallel()

	clustered := true

	tests := []struct {
		name  string
		index *topo.IndexSpecification
	}{
		{
			name:  "default id index",
			index: &topo.IndexSpecification{Name: topo.IDIndex, KeysDocument: bson.D{{Key: "_id", Value: int32(1)}}},
		},
		{
			name: "clustered index",
			index: &topo.IndexSpecification{
				Name:         "_id_clustered",
				KeysDocument: bson.D{{Key: "_id", Value: int32(1)}},
				Clustered:    &clustered,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &mockCluster{}
			report := &idxsync.Report{}

			w := idxsync.NewWriter(c, false, report)
			require.NoError(t, w.Create(t.Context(), "app", "users", tt.index))

			c.AssertNotCalled(t, "CreateIndex", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.EqualValues(t, 1, report.IndexesSkipped)
		})
	}
}

func TestWriterReportsFailure(t *testing.T) {
	t.Parallel()

	conflict := errors.Wrap(mongo.CommandError{Code: 85, Name: "IndexOptionsConflict"}, "create index")

	c := &mockCluster{}
	c.On("CreateIndex", mock.Anything, "app", "users", mock.Anything).Return(conflict).Once()

	report := &idxsync.Report{}
	w := idxsync.NewWriter(c, false, report)

	err := w.Create(t.Context(), "app", "users", sourceEmailIndex())
	require.ErrorIs(t, err, conflict)
	assert.True(t, topo.IsIndexConflict(err))

	require.Len(t, report.Failures, 1)
	assert.Equal(t, idxsync.Failure{
		Op:        idxsync.OpCreateIndex,
		Namespace: "app.users",
		Index:     "email_idx",
		Err:       conflict,
	}, report.Failures[0])
	assert.Zero(t, report.IndexesCreated)
}

func TestReaderSwallowsListingError(t *testing.T) {
	t.Parallel()

	c := &mockCluster{}
	c.On("ListIndexes", mock.Anything, "app", "users").
		Return([]*topo.IndexSpecification(nil), errors.New("connection reset")).Once()
	c.On("ListIndexes", mock.Anything, "app", "events").
		Return([]*topo.IndexSpecification(nil), mongo.CommandError{Code: 166}).Once()
	c.On("ListIndexes", mock.Anything, "app", "orders").
		Return([]*topo.IndexSpecification{sourceEmailIndex()}, nil).Once()

	report := &idxsync.Report{}
	r := idxsync.NewReader(c, report)

	assert.Empty(t, r.Indexes(t.Context(), "app", "users"))
	assert.Empty(t, r.Indexes(t.Context(), "app", "events"))
	assert.Len(t, r.Indexes(t.Context(), "app", "orders"), 1)

	c.AssertExpectations(t)
	assert.EqualValues(t, 1, report.IndexReadFailures)
	assert.EqualValues(t, 1, report.CollectionsSkipped)
	assert.EqualValues(t, 1, report.IndexesRead)
}
