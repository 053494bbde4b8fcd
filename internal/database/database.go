package database

import (
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// CGO-free SQLite driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// Config is the gorm configuration shared by the server and the tests.
func Config(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
}

// Connect opens the database named by the DSN scheme: postgres:// and
// postgresql:// go to PostgreSQL, mysql:// to MySQL, anything else is a SQLite
// path.
func Connect(opts Options, log *zap.Logger) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	dialector, kind, err := dialectorFor(opts.DSN)
	if err != nil {
		return nil, err
	}
	log.Info("connecting to database", zap.String("driver", kind))

	db, err := gorm.Open(dialector, Config(opts.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kind, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres", nil
	case strings.HasPrefix(dsn, "mysql://"):
		cfg, err := mysqldrv.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return nil, "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		if _, ok := cfg.Params["charset"]; !ok {
			cfg.Params["charset"] = "utf8mb4"
		}
		return mysql.Open(cfg.FormatDSN()), "mysql", nil
	default:
		if dsn == "" {
			return nil, "", fmt.Errorf("database dsn is empty")
		}
		return gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}), "sqlite", nil
	}
}

// sqliteDSN fills in the connection parameters the ledger relies on unless
// the DSN already sets them. SQLite ignores SELECT ... FOR UPDATE, so every
// transaction begins IMMEDIATE: it takes the write lock up front and
// concurrent writers queue on busy_timeout instead of failing on a lock
// upgrade.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
