package topo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Cluster exposes the namespace and index operations of one deployment.
type Cluster struct {
	client *mongo.Client
}

// NewCluster returns a Cluster over m. The caller keeps ownership of m.
func NewCluster(m *mongo.Client) *Cluster {
	return &Cluster{client: m}
}

func (c *Cluster) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return ListDatabaseNames(ctx, c.client)
}

func (c *Cluster) ListCollectionNames(ctx context.Context, db string) ([]string, error) {
	return ListCollectionNames(ctx, c.client, db)
}

func (c *Cluster) ListIndexes(ctx context.Context, db, coll string) ([]*IndexSpecification, error) {
	return ListIndexes(ctx, c.client, db, coll)
}

func (c *Cluster) CreateIndex(ctx context.Context, db, coll string, index *IndexSpecification) error {
	return CreateIndex(ctx, c.client, db, coll, index)
}

func (c *Cluster) DropIndexes(ctx context.Context, db, coll string) error {
	return DropIndexes(ctx, c.client, db, coll)
}
