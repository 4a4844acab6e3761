package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/dashboard/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/pgtest"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
)

func TestDB_Usage(t *testing.T) {
	pool := pgtest.New(t)
	repo := NewDB(pool, instrument.NewNoop(), 5*time.Second)
	ids := uid.NewUUID()
	ctx := context.Background()

	userID := ids.Generate()
	other := ids.Generate()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	logs := []entity.UsageLog{
		{ID: ids.Generate(), UserID: userID, Endpoint: "/api/otp/send", Status: entity.StatusSuccess, Email: "a@b.com", LatencyMS: 100, CreatedAt: day.Add(-23 * time.Hour)},
		{ID: ids.Generate(), UserID: userID, Endpoint: "/api/otp/verify", Status: entity.StatusFailed, Email: "a@b.com", LatencyMS: 20, CreatedAt: day.Add(time.Hour)},
		{ID: ids.Generate(), UserID: userID, Endpoint: "/api/otp/verify", Status: entity.StatusSuccess, Email: "a@b.com", LatencyMS: 30, CreatedAt: day.Add(2 * time.Hour)},
		{ID: ids.Generate(), UserID: other, Endpoint: "/api/otp/send", Status: entity.StatusSuccess, CreatedAt: day.Add(time.Hour)},
	}
	for _, l := range logs {
		if err := repo.InsertUsage(ctx, l); err != nil {
			t.Fatalf("InsertUsage() error = %v", err)
		}
	}
	if err := repo.InsertUsage(ctx, logs[0]); err != nil {
		t.Fatalf("InsertUsage(redelivered) error = %v", err)
	}

	sum, err := repo.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Total != 3 || sum.Succeeded != 2 || sum.TotalLatencyMS != 150 {
		t.Fatalf("Summary() = %+v", sum)
	}

	days, err := repo.DailyCounts(ctx, userID, day.AddDate(0, 0, -6), day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DailyCounts() error = %v", err)
	}
	if len(days) != 2 || days[0].Count != 1 || days[1].Count != 2 || !days[1].Day.Equal(day) {
		t.Fatalf("DailyCounts() = %+v", days)
	}

	list, err := repo.ListUsage(ctx, userID, 2)
	if err != nil {
		t.Fatalf("ListUsage() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != logs[2].ID || list[1].ID != logs[1].ID {
		t.Fatalf("ListUsage() = %+v", list)
	}

	empty, err := repo.Summary(ctx, ids.Generate())
	if err != nil || empty.Total != 0 || empty.TotalLatencyMS != 0 {
		t.Fatalf("Summary(empty) = %+v, %v", empty, err)
	}
}

func TestDB_CountActiveUsers(t *testing.T) {
	pool := pgtest.New(t)
	repo := NewDB(pool, instrument.NewNoop(), 5*time.Second)
	ids := uid.NewUUID()
	ctx := context.Background()

	for i, active := range []bool{true, true, false} {
		_, err := pool.Exec(ctx, `
			INSERT INTO identity_users (id, email, password_hash, api_key_digest, api_key_sealed, is_active)
			VALUES ($1, $2, 'x', $3, '\x00', $4)`,
			ids.Generate(), fmt.Sprintf("user%d@example.com", i), fmt.Sprintf("digest-%d", i), active,
		)
		if err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	got, err := repo.CountActiveUsers(ctx)
	if err != nil {
		t.Fatalf("CountActiveUsers() error = %v", err)
	}
	if got != 2 {
		t.Fatalf("CountActiveUsers() = %d, want 2", got)
	}
}

func TestDB_QueryTimeout(t *testing.T) {
	// Arrange
	pool := pgtest.New(t)
	repo := NewDB(pool, instrument.NewNoop(), time.Nanosecond)

	// Act
	_, err := repo.CountActiveUsers(context.Background())

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("CountActiveUsers() error = %v, want deadline exceeded", err)
	}
}
