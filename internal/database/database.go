// Package database opens connections to the optional server-backed stores.
package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/repository"
)

// OpenStore builds the configured store backend. The returned closer
// releases the underlying connection; for the file backend it is a no-op.
func OpenStore(ctx context.Context) (repository.Store, func(), error) {
	switch mode := config.DBMode(); mode {
	case "json":
		store, err := repository.NewJSONStore(config.JSONFolder())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		db, err := ConnectPostgres()
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	case "mongodb":
		client, err := ConnectMongo(ctx)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(config.MongoDatabase()).Collection(config.MongoCollection())
		return repository.NewMongoStore(col), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_MODE %q", mode)
	}
}

// ConnectPostgres opens the configured Postgres database.
func ConnectPostgres() (*sqlx.DB, error) {
	return sqlx.Connect("pgx", config.DBDSN())
}

// ConnectMongo opens the configured MongoDB deployment and verifies it is
// reachable.
func ConnectMongo(ctx context.Context) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI()))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}
