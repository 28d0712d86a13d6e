package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-workers/internal/common/config"
	"leadflow-workers/internal/common/logger"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS broadcast_campaigns`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS broadcast_campaigns_due_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS leads_industry_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	client := &PostgresClient{DB: db}
	require.NoError(t, client.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS broadcast_campaigns`).WillReturnError(fmt.Errorf("permission denied"))
	mock.ExpectRollback()

	err = (&PostgresClient{DB: db}).Migrate(context.Background())
	assert.ErrorContains(t, err, "migration step 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestWaitReady(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		attempts  int
		wantErr   bool
		wantCalls int
	}{
		{"ready immediately", 0, 3, false, 1},
		{"ready after retries", 2, 3, false, 3},
		{"never ready", 5, 3, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WaitReady(context.Background(), "db", tt.attempts, time.Millisecond, logger.NewTestLogger(t), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return fmt.Errorf("connection refused")
				}
				return nil
			})
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWaitReady_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitReady(ctx, "redis", 5, time.Hour, logger.NewNoOpLogger(), func(context.Context) error {
		return fmt.Errorf("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
