package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	pkgdb "publishing-backend/pkg/database"
)

const migrationSuffix = ".up.sql"

// Migration là một file schema: <version>_<name>.up.sql
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// MigrationStatus cho lệnh `migrate status`
type MigrationStatus struct {
	Version   string
	Name      string
	AppliedAt *time.Time
}

// MigrationDB là phần của *pgxpool.Pool mà Migrator cần
type MigrationDB interface {
	pkgdb.TxStarter
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Migrator apply các file SQL theo thứ tự version, mỗi file một transaction
type Migrator struct {
	db    MigrationDB
	files fs.FS
}

func NewMigrator(db MigrationDB, files fs.FS) *Migrator {
	return &Migrator{db: db, files: files}
}

// LoadMigrations đọc và sắp xếp migrations từ fsys
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var migrations []Migration
	seen := make(map[string]string)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, migrationSuffix) {
			continue
		}

		base := strings.TrimSuffix(name, migrationSuffix)
		version, label, ok := strings.Cut(base, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("invalid migration file name %q", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %s (%s, %s)", version, prev, name)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		migrations = append(migrations, Migration{Version: version, Name: label, SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(32) PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	rows, err := m.db.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		out[version] = appliedAt
	}
	return out, rows.Err()
}

// Up apply tất cả migrations chưa chạy, trả về danh sách version vừa apply
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	migrations, err := LoadMigrations(m.files)
	if err != nil {
		return nil, err
	}

	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var appliedNow []string
	for _, mig := range migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}

		// SQL của file và bản ghi schema_migrations commit cùng nhau
		appliedAt, err := pkgdb.WithTransactionResult(ctx, m.db, func(tx pgx.Tx) (time.Time, error) {
			var at time.Time
			if _, err := tx.Exec(ctx, mig.SQL); err != nil {
				return at, err
			}
			err := tx.QueryRow(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2) RETURNING applied_at`,
				mig.Version, mig.Name).Scan(&at)
			return at, err
		})
		if err != nil {
			return appliedNow, fmt.Errorf("apply migration %s_%s: %w", mig.Version, mig.Name, err)
		}

		log.Info().
			Str("version", mig.Version).
			Str("name", mig.Name).
			Time("applied_at", appliedAt).
			Msg("[MIGRATE] Applied")
		appliedNow = append(appliedNow, mig.Version)
	}

	return appliedNow, nil
}

// Status liệt kê mọi migration kèm thời điểm apply (nil nếu chưa apply)
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	migrations, err := LoadMigrations(m.files)
	if err != nil {
		return nil, err
	}

	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, mig := range migrations {
		st := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if at, ok := done[mig.Version]; ok {
			at := at
			st.AppliedAt = &at
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
