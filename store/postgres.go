package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres is a Store backed by the registered_commands table.
type Postgres struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

type hashRow struct {
	Scope string `db:"scope"`
	Name  string `db:"name"`
	Hash  string `db:"hash"`
}

// NewPostgres applies the migrations and connects to dsn, a postgres:// URL.
func NewPostgres(ctx context.Context, dsn string, maxConns int, log logrus.FieldLogger) (*Postgres, error) {
	if err := Migrate(dsn, log); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	log.WithFields(logrus.Fields{
		"pool_open": maxConns,
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("Database connected")

	return &Postgres{db: db, log: log}, nil
}

// Migrate applies all up migrations embedded in the binary.
func Migrate(dsn string, log logrus.FieldLogger) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration execution failed: %w", err)
	}
	toVer, _, _ := m.Version()
	log.WithFields(logrus.Fields{"from_ver": fromVer, "to_ver": toVer}).Debug("Migrations applied")
	return nil
}

func (p *Postgres) Hashes(ctx context.Context, scope string) (map[string]string, error) {
	var rows []hashRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT scope, name, hash FROM registered_commands WHERE scope = $1`, scope)
	if err != nil {
		return nil, fmt.Errorf("load hashes for %q: %w", scope, err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Hash
	}
	return out, nil
}

func (p *Postgres) SaveHashes(ctx context.Context, scope string, hashes map[string]string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registered_commands WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("clear hashes for %q: %w", scope, err)
	}
	if len(hashes) > 0 {
		rows := make([]hashRow, 0, len(hashes))
		for name, h := range hashes {
			rows = append(rows, hashRow{Scope: scope, Name: name, Hash: h})
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO registered_commands (scope, name, hash) VALUES (:scope, :name, :hash)`, rows)
		if err != nil {
			return fmt.Errorf("save hashes for %q: %w", scope, err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	if err := p.db.SelectContext(ctx, &scopes,
		`SELECT DISTINCT scope FROM registered_commands ORDER BY scope`); err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return scopes, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
