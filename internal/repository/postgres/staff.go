package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/models"
	"github.com/ndanilov/staffdesk/internal/repository"
)

type StaffRepo struct {
	DB DBTX
}

// Columns the list query may be ordered by
// Anything else falls back to created_at
var staffSortColumns = map[string]struct{}{
	"staff_id":   {},
	"name":       {},
	"dob":        {},
	"salary":     {},
	"status":     {},
	"created_at": {},
	"updated_at": {},
}

const createStaff = `-- name: CreateStaff
INSERT INTO staff (staff_id, name, dob, salary, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, staff_id, name, dob, salary, status, created_at, updated_at
`

func (r *StaffRepo) Create(ctx context.Context, staff models.Staff) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, createStaff, staff.StaffID, staff.Name, staff.DOB, staff.Salary, staff.Status)
	created, err := pgx.CollectOneRow(rows, rowToStaff)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrStaffAlreadyExists
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getStaffByStaffID = `-- name: GetStaffByStaffID
SELECT id, staff_id, name, dob, salary, status, created_at, updated_at
FROM staff
WHERE staff_id = $1
`

func (r *StaffRepo) GetByStaffID(ctx context.Context, staffID string) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, getStaffByStaffID, staffID)
	staff, err := pgx.CollectOneRow(rows, rowToStaff)

	switch {
	case err == nil:
		return staff, nil
	case errors.Is(err, pgx.ErrNoRows):
		return staff, apperrors.ErrStaffNotFound
	default:
		return staff, fmt.Errorf("db error: %w", err)
	}
}

// List staff matching the filter
// Conditions are combined with AND; empty filter lists everything
func (r *StaffRepo) List(ctx context.Context, filter repository.StaffFilter) ([]models.Staff, int64, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	addCondition := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Name != "" {
		addCondition("name ILIKE $%d", "%"+filter.Name+"%")
	}
	if filter.SalaryMin != nil {
		addCondition("salary >= $%d", *filter.SalaryMin)
	}
	if filter.SalaryMax != nil {
		addCondition("salary <= $%d", *filter.SalaryMax)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := r.DB.QueryRow(ctx, "SELECT count(*) FROM staff"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	sortBy := filter.SortBy
	if _, ok := staffSortColumns[sortBy]; !ok {
		sortBy = "created_at"
	}
	order := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		order = "DESC"
	}

	query := fmt.Sprintf(
		"SELECT id, staff_id, name, dob, salary, status, created_at, updated_at FROM staff%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		where, sortBy, order, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, _ := r.DB.Query(ctx, query, args...)
	items, err := pgx.CollectRows(rows, rowToStaff)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return items, total, nil
}

const updateStaff = `-- name: UpdateStaff
UPDATE staff
SET staff_id   = COALESCE($2, staff_id),
    name       = COALESCE($3, name),
    dob        = COALESCE($4, dob),
    salary     = COALESCE($5, salary),
    status     = COALESCE($6, status),
    updated_at = now()
WHERE staff_id = $1
RETURNING id, staff_id, name, dob, salary, status, created_at, updated_at
`

// Update applies only the non-nil fields in one statement
// Single UPDATE keeps concurrent partial updates from overwriting each other
func (r *StaffRepo) Update(ctx context.Context, staffID string, upd repository.StaffUpdate) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, updateStaff, staffID, upd.StaffID, upd.Name, upd.DOB, upd.Salary, upd.Status)
	updated, err := pgx.CollectOneRow(rows, rowToStaff)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrStaffNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return updated, apperrors.ErrStaffAlreadyExists
		}

		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteStaff = `-- name: DeleteStaff
DELETE FROM staff
WHERE staff_id = $1
`

func (r *StaffRepo) Delete(ctx context.Context, staffID string) error {
	tag, err := r.DB.Exec(ctx, deleteStaff, staffID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStaffNotFound
	}
	return nil
}

func rowToStaff(row pgx.CollectableRow) (models.Staff, error) {
	var s models.Staff
	err := row.Scan(&s.ID, &s.StaffID, &s.Name, &s.DOB, &s.Salary, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
