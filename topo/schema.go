package topo

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dgs3/mdb-index-sync/errors"
)

// IDIndex is the name of the default "_id" index.
const IDIndex = "_id_"

// IndexSpecification contains all index options reported by listIndexes.
//
// NOTE: [mongo.IndexView.CreateOne] uses [mongo.IndexModel] which does not support every
// option (e.g. `prepareUnique`), so indexes are created with the createIndexes command.
type IndexSpecification struct {
	Name               string `bson:"name"`                         // Index name
	Namespace          string `bson:"ns,omitempty"`                 // Namespace (pre-4.4 servers)
	KeysDocument       bson.D `bson:"key"`                          // Key pattern
	Version            int32  `bson:"v,omitempty"`                  // Index version
	Sparse             *bool  `bson:"sparse,omitempty"`             // Sparse index
	Hidden             *bool  `bson:"hidden,omitempty"`             // Hidden index
	Unique             *bool  `bson:"unique,omitempty"`             // Unique index
	PrepareUnique      *bool  `bson:"prepareUnique,omitempty"`      // Prepare unique index
	Clustered          *bool  `bson:"clustered,omitempty"`          // Clustered index
	ExpireAfterSeconds *int64 `bson:"expireAfterSeconds,omitempty"` // TTL

	Weights          any      `bson:"weights,omitempty"`
	DefaultLanguage  *string  `bson:"default_language,omitempty"`
	LanguageOverride *string  `bson:"language_override,omitempty"`
	TextVersion      *int32   `bson:"textIndexVersion,omitempty"`
	Collation        bson.Raw `bson:"collation,omitempty"`

	WildcardProjection      any `bson:"wildcardProjection,omitempty"`
	PartialFilterExpression any `bson:"partialFilterExpression,omitempty"`

	Bits      *int32   `bson:"bits,omitempty"`
	Min       *float64 `bson:"min,omitempty"`
	Max       *float64 `bson:"max,omitempty"`
	GeoIdxVer *int32   `bson:"2dsphereIndexVersion,omitempty"`

	Rest map[string]any `bson:",inline"`
}

// IsDefault returns true for the "_id_" index every collection is created with.
func (s *IndexSpecification) IsDefault() bool {
	return s.Name == IDIndex
}

// IsUnique returns true if the index enforces uniqueness.
func (s *IndexSpecification) IsUnique() bool {
	return s.Unique != nil && *s.Unique
}

// IsClustered returns true if the index is clustered.
func (s *IndexSpecification) IsClustered() bool {
	return s.Clustered != nil && *s.Clustered
}

// KeyAndName returns a new specification holding only the key pattern and the name.
func (s *IndexSpecification) KeyAndName() *IndexSpecification {
	return &IndexSpecification{
		Name:         s.Name,
		KeysDocument: slices.Clone(s.KeysDocument),
	}
}

// WithOptions returns a copy with every option kept and the source-only fields
// (namespace and index version) cleared.
func (s *IndexSpecification) WithOptions() *IndexSpecification {
	spec := *s
	spec.Namespace = ""
	spec.Version = 0
	spec.KeysDocument = slices.Clone(s.KeysDocument)

	return &spec
}

// ListDatabaseNames returns the names of all databases.
func ListDatabaseNames(ctx context.Context, m *mongo.Client) ([]string, error) {
	names, err := m.ListDatabaseNames(ctx, bson.D{})

	return names, errors.Wrap(err, "list databases")
}

// ListCollectionNames returns the names of all collections and views in the database.
func ListCollectionNames(ctx context.Context, m *mongo.Client, db string) ([]string, error) {
	names, err := m.Database(db).ListCollectionNames(ctx, bson.D{})

	return names, errors.Wrapf(err, "list collections for %q", db)
}

// ListIndexes returns the index specifications of a collection.
func ListIndexes(
	ctx context.Context,
	m *mongo.Client,
	db string,
	coll string,
) ([]*IndexSpecification, error) {
	cur, err := m.Database(db).Collection(coll).Indexes().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list indexes")
	}

	var indexes []*IndexSpecification
	err = cur.All(ctx, &indexes)

	return indexes, errors.Wrap(err, "decode indexes")
}

// CreateIndex creates one index with the createIndexes command.
func CreateIndex(
	ctx context.Context,
	m *mongo.Client,
	db string,
	coll string,
	index *IndexSpecification,
) error {
	err := m.Database(db).RunCommand(ctx, bson.D{
		{Key: "createIndexes", Value: coll},
		{Key: "indexes", Value: bson.A{index}},
	}).Err()

	return errors.Wrapf(err, "create index %s.%s.%s", db, coll, index.Name)
}

// DropIndexes drops every index of a collection except "_id_".
func DropIndexes(ctx context.Context, m *mongo.Client, db, coll string) error {
	err := m.Database(db).Collection(coll).Indexes().DropAll(ctx)

	return errors.Wrapf(err, "drop indexes %s.%s", db, coll)
}
