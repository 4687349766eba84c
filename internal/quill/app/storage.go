package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/quill/pkg/storage"
	quillredis "github.com/aussiebroadwan/quill/pkg/storage/drivers/redis"
	"github.com/aussiebroadwan/quill/pkg/storage/drivers/sqlite"
)

// sqliteSalt seals values in the session database. It does not depend on the
// file path, so a moved database still opens.
const sqliteSalt = "quill:sqlite"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStorage opens the durable store for cfg.Storage, sealed when a
// passphrase is configured. The closer releases the backing connection.
func openStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, io.Closer, error) {
	var (
		st     storage.Storage
		closer io.Closer = nopCloser{}
		salt   string
	)

	switch cfg.Storage {
	case StorageMemory:
		st = storage.NewMemory()
		salt = "quill:memory"

	case StorageSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		version, err := db.SchemaVersion()
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("session database schema: %w", err)
		}
		logger.Info("session database ready", "file", cfg.DatabaseFile, "schema_version", version)
		st, closer, salt = db, db, sqliteSalt

	case StorageRedis:
		rdb, err := quillredis.Dial(ctx, cfg.RedisAddr, cfg.RedisNS)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("session redis ready", "addr", cfg.RedisAddr, "namespace", cfg.RedisNS)
		st, closer, salt = rdb, rdb, cfg.RedisNS

	default:
		return nil, nil, fmt.Errorf("unknown storage mode %q", cfg.Storage)
	}

	passphrase, err := cfg.sealPassphrase()
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	if passphrase == "" {
		return st, closer, nil
	}

	sealed, err := storage.NewSealed(st, passphrase, salt)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	logger.Debug("session values sealed at rest")
	return sealed, closer, nil
}
