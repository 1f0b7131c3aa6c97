package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/project"
	"github.com/whhaicheng/SimDesk/internal/infra/database"
)

const projectColumns = "id, path, name, tool_version, first_opened_at, last_opened_at, open_count"

// SQLProjectRepository implements the ProjectRepository interface over database/sql.
type SQLProjectRepository struct {
	db *database.DB
}

// NewSQLProjectRepository creates a new SQL project repository.
func NewSQLProjectRepository(db *database.DB) *SQLProjectRepository {
	return &SQLProjectRepository{db: db}
}

// Upsert inserts or replaces the entry for the project's path.
// A replaced entry keeps its position in insertion order.
func (r *SQLProjectRepository) Upsert(ctx context.Context, p *project.RecentProject) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM recent_projects WHERE path = ?"), p.Path).Scan(&count); err != nil {
			return fmt.Errorf("check project: %w", err)
		}

		if count > 0 {
			query := `
				UPDATE recent_projects SET
					id = ?, name = ?, tool_version = ?,
					first_opened_at = ?, last_opened_at = ?, open_count = ?
				WHERE path = ?
			`
			_, err := tx.ExecContext(ctx, r.db.Rebind(query),
				p.ID, p.Name, p.ToolVersion,
				formatTime(p.FirstOpenedAt), formatTime(p.LastOpenedAt), p.OpenCount,
				p.Path,
			)
			if err != nil {
				return fmt.Errorf("update project: %w", err)
			}
			return nil
		}

		seq, err := nextSeq(ctx, r.db, tx, "recent_projects")
		if err != nil {
			return err
		}
		query := "INSERT INTO recent_projects (seq, " + projectColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err = tx.ExecContext(ctx, r.db.Rebind(query),
			seq, p.ID, p.Path, p.Name, p.ToolVersion,
			formatTime(p.FirstOpenedAt), formatTime(p.LastOpenedAt), p.OpenCount,
		)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return nil
	})
	return storageErr("save project", err)
}

// FindByPath returns (nil, nil) when the path is not in the list.
func (r *SQLProjectRepository) FindByPath(ctx context.Context, path string) (*project.RecentProject, error) {
	query := "SELECT " + projectColumns + " FROM recent_projects WHERE path = ?"
	p, err := scanProject(r.db.QueryRowContext(ctx, r.db.Rebind(query), path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find project", err)
	}
	return p, nil
}

// Delete removes the entry for path.
func (r *SQLProjectRepository) Delete(ctx context.Context, path string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM recent_projects WHERE path = ?"), path)
	if err != nil {
		return storageErr("delete project", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete project", err)
	}
	if rows == 0 {
		return &usecase.NotFoundError{Entity: "project", ID: path}
	}
	return nil
}

// DeleteAll clears the list.
func (r *SQLProjectRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM recent_projects"); err != nil {
		return storageErr("clear projects", err)
	}
	return nil
}

// AllForSearch returns candidate entries in insertion order.
// Tool version and last-opened bounds are applied in SQL.
func (r *SQLProjectRepository) AllForSearch(ctx context.Context, filter project.Filter) ([]*project.RecentProject, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ToolVersion != "" {
		conds = append(conds, "tool_version = ?")
		args = append(args, filter.ToolVersion)
	}
	if filter.OpenedFrom != nil {
		conds = append(conds, "last_opened_at >= ?")
		args = append(args, formatTime(*filter.OpenedFrom))
	}
	if filter.OpenedTo != nil {
		conds = append(conds, "last_opened_at <= ?")
		args = append(args, formatTime(*filter.OpenedTo))
	}

	query := "SELECT " + projectColumns + " FROM recent_projects"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq ASC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, storageErr("query projects", err)
	}
	defer rows.Close()

	var projects []*project.RecentProject
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, storageErr("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate projects", err)
	}
	return projects, nil
}

func scanProject(row scanner) (*project.RecentProject, error) {
	var (
		p                   project.RecentProject
		firstOpen, lastOpen string
	)
	if err := row.Scan(&p.ID, &p.Path, &p.Name, &p.ToolVersion, &firstOpen, &lastOpen, &p.OpenCount); err != nil {
		return nil, err
	}
	var err error
	if p.FirstOpenedAt, err = parseTime(strings.TrimSpace(firstOpen)); err != nil {
		return nil, err
	}
	if p.LastOpenedAt, err = parseTime(strings.TrimSpace(lastOpen)); err != nil {
		return nil, err
	}
	return &p, nil
}
