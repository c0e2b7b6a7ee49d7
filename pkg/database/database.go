package database

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/bookshelf-api/bookshelf/pkg/config"
	"github.com/bookshelf-api/bookshelf/pkg/models"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	qh.log.Debug(event.Query, logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()})
}

// New opens the single database handle shared by every request. It fails if
// the database can't be reached; there is no retry.
func New(cfg *config.Config) (*bun.DB, error) {
	sqldb, dialect, err := open(cfg)
	if err != nil {
		return nil, err
	}

	// One connection for the whole process. Concurrent requests queue in
	// database/sql instead of opening more.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, dialect)

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	_, err = db.Exec("SELECT 1")
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s database", cfg.DatabaseDriver)
	}

	return db, nil
}

func open(cfg *config.Config) (*sql.DB, schema.Dialect, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMySQL:
		mcfg := mysql.NewConfig()
		mcfg.User = cfg.DatabaseUser
		mcfg.Passwd = cfg.DatabasePassword
		mcfg.Net = "tcp"
		mcfg.Addr = net.JoinHostPort(cfg.DatabaseHost, strconv.Itoa(cfg.DatabasePort))
		mcfg.DBName = cfg.DatabaseName
		mcfg.ParseTime = true
		// Report matched rather than changed rows so that an update that
		// rewrites identical values isn't mistaken for a missing book.
		mcfg.ClientFoundRows = true

		connector, err := mysql.NewConnector(mcfg)
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
		return sql.OpenDB(connector), mysqldialect.New(), nil
	case config.DriverPostgres:
		pgcfg, err := pgx.ParseConfig(postgresURL(cfg))
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
		return stdlib.OpenDB(*pgcfg), pgdialect.New(), nil
	case config.DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseName)
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
		return sqldb, sqlitedialect.New(), nil
	default:
		return nil, nil, errors.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func postgresURL(cfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DatabaseUser, cfg.DatabasePassword),
		Host:   net.JoinHostPort(cfg.DatabaseHost, strconv.Itoa(cfg.DatabasePort)),
		Path:   "/" + cfg.DatabaseName,
	}
	return u.String()
}

// CheckBooksTable verifies the books table exists and is readable, and returns
// its row count. The table itself is managed outside this service.
func CheckBooksTable(ctx context.Context, db bun.IDB) (int, error) {
	count, err := db.NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "books table is not available")
	}
	return count, nil
}
