package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
	"github.com/whhaicheng/SimDesk/internal/infra/database"
)

const runColumns = `id, project_path, project_name, tool_version, input_config,
	status, result, has_report, report_location,
	duration_seconds, unit_count, sub_unit_count,
	created_at, updated_at, recorded_at`

// SQLRunRepository implements the RunRepository interface over database/sql.
type SQLRunRepository struct {
	db *database.DB
}

// NewSQLRunRepository creates a new SQL run repository.
func NewSQLRunRepository(db *database.DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

// Insert stores a new run.
// Returns a *usecase.ConflictError if the ID is taken.
func (r *SQLRunRepository) Insert(ctx context.Context, run *simulation.Run) error {
	s := run.Snapshot()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM runs WHERE id = ?"), s.ID).Scan(&count); err != nil {
			return fmt.Errorf("check run: %w", err)
		}
		if count > 0 {
			return &usecase.ConflictError{Entity: "run", ID: s.ID}
		}

		seq, err := nextSeq(ctx, r.db, tx, "runs")
		if err != nil {
			return err
		}

		query := `
			INSERT INTO runs (seq, ` + runColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, r.db.Rebind(query),
			seq,
			s.ID,
			s.ProjectPath,
			s.ProjectName,
			s.ToolVersion,
			string(s.InputConfig),
			s.Status.String(),
			string(s.Result),
			boolToInt(s.HasReport),
			s.ReportLocation,
			s.Duration,
			s.UnitCount,
			s.SubUnitCount,
			formatTime(s.CreatedAt),
			formatTime(s.UpdatedAt),
			formatTime(s.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
	if err != nil {
		return storageErr("insert run", err)
	}

	slog.Debug("SQLRunRepository: Inserted run", "id", s.ID, "status", s.Status)
	return nil
}

// Update replaces the mutable fields of a stored run.
// Returns a *usecase.NotFoundError if the run does not exist.
func (r *SQLRunRepository) Update(ctx context.Context, run *simulation.Run) error {
	s := run.Snapshot()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE runs SET
				status = ?,
				result = ?,
				has_report = ?,
				report_location = ?,
				updated_at = ?
			WHERE id = ?
		`
		res, err := tx.ExecContext(ctx, r.db.Rebind(query),
			s.Status.String(),
			string(s.Result),
			boolToInt(s.HasReport),
			s.ReportLocation,
			formatTime(s.UpdatedAt),
			s.ID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows > 0 {
			return nil
		}

		// MySQL reports zero affected rows when nothing changed.
		var count int
		if err := tx.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM runs WHERE id = ?"), s.ID).Scan(&count); err != nil {
			return fmt.Errorf("check run: %w", err)
		}
		if count == 0 {
			return &usecase.NotFoundError{Entity: "run", ID: s.ID}
		}
		return nil
	})
	if err != nil {
		return storageErr("update run", err)
	}

	slog.Debug("SQLRunRepository: Updated run", "id", s.ID, "status", s.Status)
	return nil
}

// FindByID finds a run by its ID. Returns (nil, nil) when absent.
func (r *SQLRunRepository) FindByID(ctx context.Context, id string) (*simulation.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE id = ?"
	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find run", err)
	}
	return run, nil
}

// Exists reports whether a run with the ID is stored.
func (r *SQLRunRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM runs WHERE id = ?"), id).Scan(&count); err != nil {
		return false, storageErr("check run", err)
	}
	return count > 0, nil
}

// Delete deletes a run by its ID.
func (r *SQLRunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM runs WHERE id = ?"), id)
	if err != nil {
		return storageErr("delete run", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete run", err)
	}
	if rows == 0 {
		return &usecase.NotFoundError{Entity: "run", ID: id}
	}

	slog.Debug("SQLRunRepository: Deleted run", "id", id)
	return nil
}

// AllForSearch returns candidate runs in insertion order.
// Status, project path and recorded-at bounds are applied in SQL; the name
// substring is left to search.Search.
func (r *SQLRunRepository) AllForSearch(ctx context.Context, filter simulation.Filter) ([]*simulation.Run, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.ProjectPath != "" {
		conds = append(conds, "project_path = ?")
		args = append(args, filter.ProjectPath)
	}
	if filter.RecordedFrom != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, formatTime(*filter.RecordedFrom))
	}
	if filter.RecordedTo != nil {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, formatTime(*filter.RecordedTo))
	}

	query := "SELECT " + runColumns + " FROM runs"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq ASC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storageErr("query runs", err)
	}
	defer rows.Close()

	var runs []*simulation.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, storageErr("scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate runs", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a row in runColumns order and restores the aggregate.
func scanRun(row scanner) (*simulation.Run, error) {
	var (
		s                                simulation.Snapshot
		inputConfig, status, result      string
		hasReport                        int
		createdAt, updatedAt, recordedAt string
	)
	err := row.Scan(
		&s.ID,
		&s.ProjectPath,
		&s.ProjectName,
		&s.ToolVersion,
		&inputConfig,
		&status,
		&result,
		&hasReport,
		&s.ReportLocation,
		&s.Duration,
		&s.UnitCount,
		&s.SubUnitCount,
		&createdAt,
		&updatedAt,
		&recordedAt,
	)
	if err != nil {
		return nil, err
	}

	s.InputConfig = simulation.Payload(inputConfig)
	s.Result = simulation.Payload(result)
	s.HasReport = hasReport != 0
	if s.Status, err = simulation.ParseStatus(status); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(strings.TrimSpace(createdAt)); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(strings.TrimSpace(updatedAt)); err != nil {
		return nil, err
	}
	if s.RecordedAt, err = parseTime(strings.TrimSpace(recordedAt)); err != nil {
		return nil, err
	}

	run, err := simulation.Restore(s)
	if err != nil {
		return nil, fmt.Errorf("restore run %s: %w", s.ID, err)
	}
	return run, nil
}

// storageErr wraps driver failures, passing NotFound and Conflict through unchanged.
func storageErr(op string, err error) error {
	var (
		nf *usecase.NotFoundError
		ce *usecase.ConflictError
	)
	if errors.As(err, &nf) || errors.As(err, &ce) {
		return err
	}
	return usecase.NewStorageError(op, err)
}
