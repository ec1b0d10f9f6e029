package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Store Selection
// =============================================================================

// storeFlags collects the persistent-store options shared by the demo and
// serve commands. Exactly one backend is selected by --store.
type storeFlags struct {
	backend string // memory, file, redis, mongo

	dir string // file backend

	redisAddr     string
	redisPassword string
	redisDB       int
	redisTTL      time.Duration

	mongoURI        string
	mongoDatabase   string
	mongoCollection string
}

// register adds the store flags to cmd.
func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "store", "memory", "layout store backend: memory, file, redis, mongo")

	cmd.Flags().StringVar(&f.dir, "store-dir", "", "directory for the file store (default: ~/.config/gridboard/layouts)")

	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", "localhost:6379", "redis address for the redis store")
	cmd.Flags().StringVar(&f.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&f.redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().DurationVar(&f.redisTTL, "redis-ttl", 0, "layout expiration in redis (0 = never)")

	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "mongodb://localhost:27017", "mongodb connection URI for the mongo store")
	cmd.Flags().StringVar(&f.mongoDatabase, "mongo-db", "", "mongodb database name (default: gridboard)")
	cmd.Flags().StringVar(&f.mongoCollection, "mongo-collection", "", "mongodb collection name (default: layouts)")
}

// open constructs the selected store. Callers own the returned store and
// must Close it.
func (f *storeFlags) open(ctx context.Context) (layout.Store, error) {
	switch f.backend {
	case "memory":
		return layout.NewMemoryStore(), nil
	case "file":
		dir := f.dir
		if dir == "" {
			var err error
			if dir, err = layoutsDir(); err != nil {
				return nil, fmt.Errorf("resolve layout directory: %w", err)
			}
		}
		return layout.NewFileStore(dir)
	case "redis":
		return layout.NewRedisStore(ctx, layout.RedisConfig{
			Addr:     f.redisAddr,
			Password: f.redisPassword,
			DB:       f.redisDB,
			TTL:      f.redisTTL,
		})
	case "mongo":
		return layout.NewMongoStore(ctx, layout.MongoConfig{
			URI:        f.mongoURI,
			Database:   f.mongoDatabase,
			Collection: f.mongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory, file, redis, or mongo)", f.backend)
	}
}
