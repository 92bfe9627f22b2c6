package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"celestial/internal/domain/models"
	domrepo "celestial/internal/domain/repository"
	pkgch "celestial/pkg/clickhouse"
	applogger "celestial/pkg/logger"
)

const chartColumns = "chart_hash, name, birth_time, latitude, longitude, sun_sign, moon_sign, rising_sign, ascendant, midheaven, payload, computed_at"

// CHChartArchive implements ChartArchive backed by ClickHouse. Charts are
// stored once per hash: ReplacingMergeTree collapses re-archived rows and
// reads use FINAL.
type CHChartArchive struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewCHChartArchive(ch *pkgch.Client, l *applogger.Logger) *CHChartArchive {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHChartArchive{
		ch:    ch,
		db:    ch.DB(),
		table: ch.Database() + ".natal_charts",
		l:     l,
		now:   time.Now,
	}
}

var _ domrepo.ChartArchive = (*CHChartArchive)(nil)

// Schema returns the DDL Init runs.
func (s *CHChartArchive) Schema() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.ch.Database()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	chart_hash  FixedString(16),
	name        String,
	birth_time  DateTime64(6, 'UTC'),
	latitude    Float64,
	longitude   Float64,
	sun_sign    LowCardinality(String),
	moon_sign   LowCardinality(String),
	rising_sign LowCardinality(String),
	ascendant   Float64,
	midheaven   Float64,
	payload     String CODEC(ZSTD(3)),
	computed_at DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(computed_at)
ORDER BY chart_hash`, s.table),
	}
}

func (s *CHChartArchive) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, s.Schema()); err != nil {
		return fmt.Errorf("chart archive schema: %w", err)
	}
	return nil
}

func (s *CHChartArchive) Save(ctx context.Context, c models.NatalChart) error {
	args, err := s.rowArgs(c)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.insertQuery(), args...); err != nil {
		s.l.Error("clickhouse save chart", applogger.String("hash", c.Hash), applogger.Error(err))
		return fmt.Errorf("save chart %s: %w", c.Hash, err)
	}
	return nil
}

// SaveBatch prepares one INSERT and sends every hashed chart in a single
// block on commit. Charts without a hash are skipped.
func (s *CHChartArchive) SaveBatch(ctx context.Context, charts []models.NatalChart) error {
	rows := make([][]any, 0, len(charts))
	for _, c := range charts {
		if c.Hash == "" {
			continue
		}
		args, err := s.rowArgs(c)
		if err != nil {
			return err
		}
		rows = append(rows, args)
	}
	if len(rows) == 0 {
		return nil
	}

	err := s.ch.InBatch(ctx, s.insertQuery(), len(rows), func(i int, st *sql.Stmt) error {
		_, err := st.ExecContext(ctx, rows[i]...)
		return err
	})
	if err != nil {
		s.l.Error("clickhouse save chart batch", applogger.Int("rows", len(rows)), applogger.Error(err))
		return fmt.Errorf("save chart batch: %w", err)
	}
	return nil
}

func (s *CHChartArchive) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, chartColumns)
}

func (s *CHChartArchive) rowArgs(c models.NatalChart) ([]any, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode chart %s: %w", c.Hash, err)
	}
	return []any{
		c.Hash,
		c.Birth.Name,
		c.Birth.Timestamp,
		c.Birth.Latitude,
		c.Birth.Longitude,
		c.SunSign().String(),
		c.MoonSign().String(),
		c.RisingSign().String(),
		c.Ascendant,
		c.Midheaven,
		string(payload),
		s.now().UTC(),
	}, nil
}

// Get returns models.ErrChartNotFound when hash was never archived.
func (s *CHChartArchive) Get(ctx context.Context, hash string) (models.NatalChart, error) {
	q := fmt.Sprintf("SELECT payload FROM %s FINAL WHERE chart_hash = ? LIMIT 1", s.table)

	var payload string
	err := s.db.QueryRowContext(ctx, q, hash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NatalChart{}, models.ErrChartNotFound
	}
	if err != nil {
		s.l.Error("clickhouse get chart", applogger.String("hash", hash), applogger.Error(err))
		return models.NatalChart{}, fmt.Errorf("get chart %s: %w", hash, err)
	}

	var c models.NatalChart
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return models.NatalChart{}, fmt.Errorf("decode chart %s: %w", hash, err)
	}
	return c, nil
}

func (s *CHChartArchive) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHChartArchive) Close() error {
	return nil // pool owned by pkg/clickhouse
}
