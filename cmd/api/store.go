package main

import (
	"context"
	"fmt"

	"github.com/notihub/notification-backend-go/internal/config"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
	appHTTP "github.com/notihub/notification-backend-go/internal/handler/http"
	"github.com/notihub/notification-backend-go/internal/pkg/database"
	"github.com/notihub/notification-backend-go/internal/repository/mongodb"
	"github.com/notihub/notification-backend-go/internal/repository/postgresql"
	"github.com/notihub/notification-backend-go/internal/repository/sqlite"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type store struct {
	repo  notification.Repository
	ping  appHTTP.Pinger
	close func()
}

// openStore connects the configured backend and makes sure its schema or indexes exist
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongoDB:
		m, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, m.Database); err != nil {
			_ = m.Close(context.Background())
			return nil, err
		}
		return &store{
			repo: mongodb.NewNotificationRepository(m.Database),
			ping: func(ctx context.Context) error { return m.Client.Ping(ctx, readpref.Primary()) },
			close: func() {
				_ = m.Close(context.Background())
			},
		}, nil

	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			repo:  postgresql.NewNotificationRepository(db),
			ping:  db.Ping,
			close: db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		repo, err := sqlite.NewNotificationRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			repo:  repo,
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
