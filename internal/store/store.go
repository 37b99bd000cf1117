// Package store persists device inventories in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"inventory-dashboard/pkg/inventory"
)

// ImportResult summarizes one Replace call
type ImportResult struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Removed  int    `json:"removed"`
}

// Store keeps the raw device columns. Derived columns are recomputed on
// every Load.
type Store struct {
	pool  *pgxpool.Pool
	table string
	now   func() time.Time
}

// New wraps an existing pool. table is quoted, so any name is safe.
func New(pool *pgxpool.Pool, table string) *Store {
	return &Store{pool: pool, table: pq.QuoteIdentifier(table), now: time.Now}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return New(pool, table), nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the devices table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			service_tag      TEXT PRIMARY KEY,
			department       TEXT NOT NULL DEFAULT '',
			sector           TEXT NOT NULL DEFAULT '',
			equipment_type   TEXT NOT NULL DEFAULT '',
			asset_tag        TEXT NOT NULL DEFAULT '',
			acquisition_date DATE NOT NULL,
			expiration_date  DATE NOT NULL,
			age_years        INTEGER NOT NULL,
			age_label        TEXT NOT NULL DEFAULT '',
			cpu              TEXT NOT NULL DEFAULT '',
			cpu_generation   INTEGER NOT NULL,
			memory           TEXT NOT NULL DEFAULT '',
			memory_layout    TEXT NOT NULL DEFAULT '',
			memory_type      TEXT NOT NULL DEFAULT '',
			disk_type        TEXT NOT NULL DEFAULT '',
			storage          TEXT NOT NULL DEFAULT '',
			position         INTEGER NOT NULL,
			import_id        UUID NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return nil
}

// Replace makes the table hold exactly the devices of inv, upserting by
// service tag and deleting devices absent from inv, in one transaction.
func (s *Store) Replace(ctx context.Context, inv *inventory.Inventory) (ImportResult, error) {
	result := ImportResult{BatchID: uuid.NewString()}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	query := fmt.Sprintf(`
		INSERT INTO %s (service_tag, department, sector, equipment_type, asset_tag,
			acquisition_date, expiration_date, age_years, age_label, cpu, cpu_generation,
			memory, memory_layout, memory_type, disk_type, storage, position, import_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18::uuid, now())
		ON CONFLICT (service_tag) DO UPDATE SET
			department = EXCLUDED.department,
			sector = EXCLUDED.sector,
			equipment_type = EXCLUDED.equipment_type,
			asset_tag = EXCLUDED.asset_tag,
			acquisition_date = EXCLUDED.acquisition_date,
			expiration_date = EXCLUDED.expiration_date,
			age_years = EXCLUDED.age_years,
			age_label = EXCLUDED.age_label,
			cpu = EXCLUDED.cpu,
			cpu_generation = EXCLUDED.cpu_generation,
			memory = EXCLUDED.memory,
			memory_layout = EXCLUDED.memory_layout,
			memory_type = EXCLUDED.memory_type,
			disk_type = EXCLUDED.disk_type,
			storage = EXCLUDED.storage,
			position = EXCLUDED.position,
			import_id = EXCLUDED.import_id,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted`, s.table)

	for i, d := range inv.Devices() {
		var inserted bool
		err := tx.QueryRow(ctx, query,
			d.ServiceTag, d.Department, d.Sector, d.EquipmentType, d.AssetTag,
			d.AcquisitionDate, d.ExpirationDate, d.AgeYears, d.AgeLabel, d.CPU, d.CPUGeneration,
			d.Memory, d.MemoryLayout, d.MemoryType, d.DiskType, d.Storage, i, result.BatchID,
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("failed to upsert %s: %w", d.ServiceTag, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	del, args, err := sq.Delete(s.table).
		PlaceholderFormat(sq.Dollar).
		Where(sq.NotEq{"import_id": result.BatchID}).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("failed to build delete: %w", err)
	}
	tag, err := tx.Exec(ctx, del, args...)
	if err != nil {
		return result, fmt.Errorf("failed to remove stale devices: %w", err)
	}
	result.Removed = int(tag.RowsAffected())

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("failed to commit import: %w", err)
	}
	return result, nil
}

var deviceColumns = []string{
	"service_tag", "department", "sector", "equipment_type", "asset_tag",
	"acquisition_date", "expiration_date", "age_years", "age_label", "cpu", "cpu_generation",
	"memory", "memory_layout", "memory_type", "disk_type", "storage",
}

// Load reads every device in import order.
func (s *Store) Load(ctx context.Context) (*inventory.Inventory, error) {
	query, args, err := sq.Select(deviceColumns...).
		From(s.table).
		OrderBy("position", "service_tag").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	now := s.now()
	devices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Device, error) {
		var d inventory.Device
		err := row.Scan(&d.ServiceTag, &d.Department, &d.Sector, &d.EquipmentType, &d.AssetTag,
			&d.AcquisitionDate, &d.ExpirationDate, &d.AgeYears, &d.AgeLabel, &d.CPU, &d.CPUGeneration,
			&d.Memory, &d.MemoryLayout, &d.MemoryType, &d.DiskType, &d.Storage)
		return inventory.Derive(d, now), err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan devices: %w", err)
	}
	return inventory.New(devices), nil
}
