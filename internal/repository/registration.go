package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nycd79/borough-bash/internal/model"
)

const uniqueViolation = "23505"

const registrationColumns = `id, first_name, last_name, title, program, email, region, status, created_at, updated_at`

// RegistrationRepository handles persistence for registrations.
//
// Email uniqueness is enforced by the database's unique index on
// lower(email), not by a prior existence check: two submissions racing with
// the same address cannot both pass an application-level check, but they
// cannot both survive the index.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Insert stores a new registration and returns it with a generated UUID and
// timestamps. Returns ErrDuplicateEmail when the email (case-insensitive)
// is already on file.
func (r *RegistrationRepository) Insert(ctx context.Context, reg model.Registration) (*model.Registration, error) {
	now := time.Now().UTC()
	reg.ID = uuid.New().String()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reg.ID, reg.FirstName, reg.LastName, reg.Title, reg.Program,
		reg.Email, string(reg.Region), string(reg.Status), reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return &reg, nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row, "get registration")
}

// GetByEmail returns the registration for an email address, compared
// case-insensitively, or ErrNotFound.
func (r *RegistrationRepository) GetByEmail(ctx context.Context, email string) (*model.Registration, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE lower(email) = lower($1)`, email)
	return scanRegistration(row, "get registration by email")
}

// Update applies a partial edit and bumps updated_at. Only recognized
// fields are applied; nil fields are left unchanged. Returns the updated
// record, ErrNotFound when the id is absent, or ErrDuplicateEmail when an
// email change collides with an existing registration.
func (r *RegistrationRepository) Update(ctx context.Context, id string, patch model.UpdateRequest) (*model.Registration, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE registrations SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			title      = COALESCE($4, title),
			program    = COALESCE($5, program),
			email      = COALESCE($6, email),
			region     = COALESCE($7, region),
			status     = COALESCE($8, status),
			updated_at = $9
		 WHERE id = $1
		 RETURNING `+registrationColumns,
		id, patch.FirstName, patch.LastName, patch.Title, patch.Program,
		patch.Email, regionArg(patch.Region), statusArg(patch.Status), time.Now().UTC(),
	)
	reg, err := scanRegistration(row, "update registration")
	if err != nil && isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return reg, err
}

// Delete removes a registration. Returns ErrNotFound when the id is absent.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all registrations ordered by creation time descending.
func (r *RegistrationRepository) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return collectRegistrations(rows)
}

// ListByRegion returns one region's registrations, newest first.
func (r *RegistrationRepository) ListByRegion(ctx context.Context, region model.Region) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE region = $1
		 ORDER BY created_at DESC`,
		string(region),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations for %s: %w", region, err)
	}
	return collectRegistrations(rows)
}

func scanRegistration(row pgx.Row, op string) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID, &reg.FirstName, &reg.LastName, &reg.Title, &reg.Program,
		&reg.Email, &reg.Region, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		err := rows.Scan(
			&reg.ID, &reg.FirstName, &reg.LastName, &reg.Title, &reg.Program,
			&reg.Email, &reg.Region, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// regionArg and statusArg convert optional enum pointers to the nullable
// text parameters COALESCE expects.
func regionArg(r *model.Region) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func statusArg(s *model.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
