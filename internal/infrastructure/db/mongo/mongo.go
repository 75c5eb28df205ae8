package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	defaultAppName = "account-api"
)

// Config holds the connection settings for the identity and account store.
type Config struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
	Timeout     time.Duration
}

// indexer is implemented by every store that owns a collection.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Connect opens the client, pings the primary and returns the account
// database. The client is disconnected again when the ping fails.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeoutOf(cfg))
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique and lookup indexes of the users, accounts
// and auth_events collections. Every failure is reported, not just the first.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	stores := map[string]indexer{
		collectionUsers:      NewCredentialStore(db),
		collectionAccounts:   NewAccountRepository(db),
		collectionAuthEvents: &AuditRepository{db: db},
	}

	var result *multierror.Error
	for name, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s indexes: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

func clientOptions(cfg Config) *options.ClientOptions {
	appName := cfg.AppName
	if appName == "" {
		appName = defaultAppName
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeoutOf(cfg))
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

func timeoutOf(cfg Config) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}
