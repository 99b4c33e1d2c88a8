package postgres

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"log/slog"
	"net/url"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
)

// Migrations holds the versioned schema shipped with the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	migrationsDir = "migrations"
	// SourceMigrationsDir is where GenerateMigration writes new files, relative to the repo root.
	SourceMigrationsDir = "modules/db/postgres/migrations"
)

var errNoMigrationTarget = errors.New("postgres: pool has no migration target")

// MigrateUp implements db.ConnectionPool.
// The database is created when missing, then every pending embedded migration is applied.
func (p *PostgresConnectionPool) MigrateUp() error {
	m, err := p.migrator()
	if err != nil {
		return err
	}
	return m.CreateAndMigrate()
}

// MigrateDown implements db.ConnectionPool. It rolls back the latest applied migration.
func (p *PostgresConnectionPool) MigrateDown() error {
	m, err := p.migrator()
	if err != nil {
		return err
	}
	return m.Rollback()
}

// GenerateMigration implements db.ConnectionPool.
func (p *PostgresConnectionPool) GenerateMigration(name string) error {
	if p.migrationURL == nil {
		return errNoMigrationTarget
	}
	m := dbmate.New(p.migrationURL)
	m.MigrationsDir = []string{SourceMigrationsDir}
	m.AutoDumpSchema = false
	m.Log = slogWriter{}
	return m.NewMigration(name)
}

func (p *PostgresConnectionPool) migrator() (*dbmate.DB, error) {
	if p.migrationURL == nil {
		return nil, errNoMigrationTarget
	}
	m := newMigrator(p.migrationURL)
	if p.migrateWait > 0 {
		m.WaitBefore = true
		m.WaitTimeout = p.migrateWait
	}
	return m, nil
}

func newMigrator(u *url.URL) *dbmate.DB {
	m := dbmate.New(u)
	m.FS = Migrations
	m.MigrationsDir = []string{migrationsDir}
	m.AutoDumpSchema = false
	m.Log = slogWriter{}
	return m
}

// slogWriter forwards dbmate progress lines to the default slog logger.
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(p))
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			slog.Info("migration", slog.String("msg", string(line)))
		}
	}
	return len(p), nil
}
