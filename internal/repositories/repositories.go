package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors shared by all repositories.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// The store's IN-query size limit; larger ID batches are chunked to this.
const maxIDBatch = 30

// TxnRunner executes a function inside a single store transaction, so a
// multi-document mutation either fully applies or not at all.
type TxnRunner interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxnRunner implements TxnRunner on a MongoDB session.
type MongoTxnRunner struct {
	client *mongo.Client
}

// NewMongoTxnRunner creates a new MongoTxnRunner
func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{client: client}
}

func (r *MongoTxnRunner) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func chunkIDs(ids []string) [][]string {
	var chunks [][]string
	for len(ids) > maxIDBatch {
		chunks = append(chunks, ids[:maxIDBatch])
		ids = ids[maxIDBatch:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
