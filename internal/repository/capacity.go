// Package repository implements all database queries for the registration
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nycd79/borough-bash/internal/model"
)

// CapacityRepository is the per-region ledger of confirmed seats.
//
// The counter is never read-then-written: Claim, Release and SetMax each run
// as a single conditional UPDATE, so the row's state at the moment the
// statement executes decides the outcome. That makes every operation safe
// under any number of concurrent callers across process boundaries — the
// database row, not the application, is the synchronization point.
type CapacityRepository struct {
	db *pgxpool.Pool
}

// NewCapacityRepository constructs a CapacityRepository.
func NewCapacityRepository(db *pgxpool.Pool) *CapacityRepository {
	return &CapacityRepository{db: db}
}

// EnsureRegions creates a zero-count ledger row for any region not yet
// present. Idempotent; existing rows are never overwritten.
func (r *CapacityRepository) EnsureRegions(ctx context.Context, regions []model.Region, defaultMax int) error {
	for _, region := range regions {
		_, err := r.db.Exec(ctx,
			`INSERT INTO capacity (region, confirmed_count, max_capacity)
			 VALUES ($1, 0, $2)
			 ON CONFLICT (region) DO NOTHING`,
			string(region), defaultMax,
		)
		if err != nil {
			return fmt.Errorf("ensure region %s: %w", region, err)
		}
	}
	return nil
}

// Claim atomically takes one confirmed seat in the region if any remain.
// Returns true when the seat was claimed, false when the region is full.
//
// Under N concurrent claims against K remaining seats, exactly K succeed:
// the WHERE clause re-reads confirmed_count under the row lock the UPDATE
// itself acquires, so no interleaving can overshoot max_capacity.
func (r *CapacityRepository) Claim(ctx context.Context, region model.Region) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE capacity
		 SET confirmed_count = confirmed_count + 1
		 WHERE region = $1 AND confirmed_count < max_capacity`,
		string(region),
	)
	if err != nil {
		return false, fmt.Errorf("claim seat in %s: %w", region, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release atomically returns one previously claimed seat. Releasing an
// already-zero counter is a no-op: the floor is part of the WHERE clause,
// so the count can never go negative.
func (r *CapacityRepository) Release(ctx context.Context, region model.Region) error {
	_, err := r.db.Exec(ctx,
		`UPDATE capacity
		 SET confirmed_count = confirmed_count - 1
		 WHERE region = $1 AND confirmed_count > 0`,
		string(region),
	)
	if err != nil {
		return fmt.Errorf("release seat in %s: %w", region, err)
	}
	return nil
}

// SetMax updates a region's maximum capacity. Fails with ErrInvalidCapacity
// when newMax is below the confirmed count at the moment the statement runs;
// the comparison happens inside the UPDATE so a concurrent claim cannot
// slip the count above the new maximum.
func (r *CapacityRepository) SetMax(ctx context.Context, region model.Region, newMax int) error {
	if newMax < 0 {
		return ErrInvalidCapacity
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE capacity
		 SET max_capacity = $2
		 WHERE region = $1 AND confirmed_count <= $2`,
		string(region), newMax,
	)
	if err != nil {
		return fmt.Errorf("set max for %s: %w", region, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the region is unknown or the new max is too low.
	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM capacity WHERE region = $1)`,
		string(region),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check region %s: %w", region, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidCapacity
}

// Get returns one region's ledger row.
func (r *CapacityRepository) Get(ctx context.Context, region model.Region) (*model.RegionCount, error) {
	var c model.RegionCount
	err := r.db.QueryRow(ctx,
		`SELECT region, confirmed_count, max_capacity
		 FROM capacity WHERE region = $1`,
		string(region),
	).Scan(&c.Region, &c.ConfirmedCount, &c.MaxCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get capacity for %s: %w", region, err)
	}
	return &c, nil
}

// Counts returns every region's ledger state together with the derived
// waiting-list size, ordered by region name.
func (r *CapacityRepository) Counts(ctx context.Context) ([]model.RegionCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.region, c.confirmed_count, c.max_capacity,
		        COUNT(r.id) FILTER (WHERE r.status = 'waiting_list')
		 FROM capacity c
		 LEFT JOIN registrations r ON r.region = c.region
		 GROUP BY c.region, c.confirmed_count, c.max_capacity
		 ORDER BY c.region`,
	)
	if err != nil {
		return nil, fmt.Errorf("list capacity counts: %w", err)
	}
	defer rows.Close()

	var counts []model.RegionCount
	for rows.Next() {
		var c model.RegionCount
		if err := rows.Scan(&c.Region, &c.ConfirmedCount, &c.MaxCapacity, &c.WaitingListCount); err != nil {
			return nil, fmt.Errorf("scan capacity count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
