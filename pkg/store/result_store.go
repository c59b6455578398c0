package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"biomassopt/pkg/common"
	"biomassopt/pkg/monitor"
)

const schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	fuel_price REAL NOT NULL,
	commodity_cost REAL NOT NULL,
	energy_price REAL NOT NULL,
	weather_index REAL NOT NULL,
	calculated_output REAL NOT NULL
);`

const recordColumns = "id, timestamp, fuel_price, commodity_cost, energy_price, weather_index, calculated_output"

// ResultStore is the append-only log of calculation records, backed by
// a single SQLite table. Sequence ids are assigned by the database and
// strictly increase in creation order. Writes are serialized by a
// mutex; reads are served from a bounded btree cache of the newest
// records when possible.
type ResultStore struct {
	db    *sql.DB
	mu    sync.Mutex // serializes Append/Clear and guards count
	count int64
	cache *recordCache
	stats *monitor.WorkloadStats
}

// Open opens (creating if needed) the results database at path.
func Open(path string, cacheSize int, stats *monitor.WorkloadStats) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init calculations table: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
	`); err != nil {
		log.Printf("[Store] Warning: failed to set PRAGMA: %v", err)
	}

	if stats == nil {
		stats = monitor.NewWorkloadStats()
	}

	s := &ResultStore{
		db:    db,
		cache: newRecordCache(cacheSize),
		stats: stats,
	}
	if err := s.warm(s.cache.max); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// warm loads the row count and the newest rows into the cache.
func (s *ResultStore) warm(cacheSize int) error {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM calculations").Scan(&s.count); err != nil {
		return fmt.Errorf("count calculations: %w", err)
	}

	records, err := s.query(context.Background(), cacheSize)
	if err != nil {
		return err
	}
	// Insert oldest first so eviction keeps the newest.
	for i := len(records) - 1; i >= 0; i-- {
		s.cache.Add(records[i])
	}
	return nil
}

// Append persists one calculation and returns the stored record with
// its database-assigned sequence id. Persistence errors are returned,
// never swallowed.
func (s *ResultStore) Append(ctx context.Context, inputs common.InputVector, output float64) (common.CalcRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := common.CalcRecord{
		Timestamp:        time.Now().Format(time.RFC3339Nano),
		InputVector:      inputs,
		CalculatedOutput: output,
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO calculations (timestamp, fuel_price, commodity_cost, energy_price, weather_index, calculated_output)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.FuelPrice, rec.CommodityCost, rec.EnergyPrice, rec.WeatherIndex, rec.CalculatedOutput)
	if err != nil {
		return common.CalcRecord{}, fmt.Errorf("insert calculation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return common.CalcRecord{}, fmt.Errorf("read sequence id: %w", err)
	}
	rec.ID = id

	s.count++
	s.cache.Add(rec)
	s.stats.RecordWrite()
	return rec, nil
}

// Latest returns the record with the maximum sequence id. The second
// return value is false when the store is empty.
func (s *ResultStore) Latest(ctx context.Context) (common.CalcRecord, bool, error) {
	s.stats.RecordRead()

	if rec, ok := s.cache.Latest(); ok {
		s.stats.RecordHit()
		return rec, true, nil
	}

	records, err := s.query(ctx, 1)
	if err != nil {
		return common.CalcRecord{}, false, err
	}
	if len(records) == 0 {
		return common.CalcRecord{}, false, nil
	}
	return records[0], true, nil
}

// History returns up to limit records, newest first.
func (s *ResultStore) History(ctx context.Context, limit int) ([]common.CalcRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.stats.RecordRead()

	// The cache always holds the newest records, so it can answer
	// whenever it has limit entries or the whole table.
	if n := s.cache.Len(); n >= limit || int64(n) == s.Count() {
		s.stats.RecordHit()
		return s.cache.Newest(limit), nil
	}
	return s.query(ctx, limit)
}

func (s *ResultStore) query(ctx context.Context, limit int) ([]common.CalcRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM calculations ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var records []common.CalcRecord
	for rows.Next() {
		var r common.CalcRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.FuelPrice, &r.CommodityCost,
			&r.EnergyPrice, &r.WeatherIndex, &r.CalculatedOutput); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Clear removes all records. Intended for test and reset use only.
func (s *ResultStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM calculations"); err != nil {
		return fmt.Errorf("clear calculations: %w", err)
	}
	s.count = 0
	s.cache.Reset()
	return nil
}

// Count reports the number of stored records.
func (s *ResultStore) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Stats exposes workload counters plus store gauges.
func (s *ResultStore) Stats() map[string]interface{} {
	m := s.stats.Snapshot()
	m["record_count"] = s.Count()
	m["cache_records"] = s.cache.Len()
	return m
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}
