package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celestial/internal/domain/models"
	"celestial/internal/services/astro"
	pkgch "celestial/pkg/clickhouse"
)

var archivedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newArchive(t *testing.T) (*CHChartArchive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := NewCHChartArchive(pkgch.NewClientFromDB(db, "celestial"), nil)
	a.now = func() time.Time { return archivedAt }
	return a, mock
}

func scenarioChart(t *testing.T) models.NatalChart {
	t.Helper()
	c, err := astro.ComputeChart("Ada", time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC), 40.7128, -74.006)
	require.NoError(t, err)
	return c
}

func TestArchiveInitCreatesTable(t *testing.T) {
	a, mock := newArchive(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE IF NOT EXISTS celestial")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS celestial.natal_charts")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, a.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, a.Schema()[1], "ReplacingMergeTree(computed_at)")
}

func TestArchiveSave(t *testing.T) {
	a, mock := newArchive(t)
	c := scenarioChart(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO celestial.natal_charts (chart_hash, name")).
		WithArgs(c.Hash, "Ada", c.Birth.Timestamp, 40.7128, -74.006, "Gemini", "Pisces", "Leo",
			c.Ascendant, c.Midheaven, sqlmock.AnyArg(), archivedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, a.Save(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveSaveWrapsDriverError(t *testing.T) {
	a, mock := newArchive(t)
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("code: 252, too many parts"))

	err := a.Save(context.Background(), scenarioChart(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save chart fbad8101debafe5b")
}

func TestArchiveSaveBatchSkipsUnhashed(t *testing.T) {
	a, mock := newArchive(t)
	c := scenarioChart(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO celestial.natal_charts (chart_hash"))
	prep.ExpectExec().WithArgs(c.Hash, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		"Gemini", "Pisces", "Leo", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, a.SaveBatch(context.Background(), []models.NatalChart{c, {}}))
	require.NoError(t, a.SaveBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveGet(t *testing.T) {
	a, mock := newArchive(t)
	c := scenarioChart(t)
	payload, err := json.Marshal(c)
	require.NoError(t, err)

	query := regexp.QuoteMeta("SELECT payload FROM celestial.natal_charts FINAL WHERE chart_hash = ?")
	mock.ExpectQuery(query).WithArgs(c.Hash).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(payload)))
	mock.ExpectQuery(query).WithArgs("0000000000000000").
		WillReturnError(sql.ErrNoRows)

	got, err := a.Get(context.Background(), c.Hash)
	require.NoError(t, err)
	assert.Equal(t, c.Hash, got.Hash)
	assert.Equal(t, c.Positions, got.Positions)
	assert.Equal(t, c.Aspects, got.Aspects)
	assert.True(t, c.Birth.Timestamp.Equal(got.Birth.Timestamp))

	_, err = a.Get(context.Background(), "0000000000000000")
	assert.ErrorIs(t, err, models.ErrChartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
