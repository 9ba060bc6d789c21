package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jask/tviewer/internal/viewer"
)

// ErrEmptySelection is returned when saving a selection without points.
var ErrEmptySelection = errors.New("store: empty selection")

// ErrNotFound is returned for unknown selection IDs.
var ErrNotFound = errors.New("store: selection not found")

// SelectionInfo summarizes a saved selection.
type SelectionInfo struct {
	ID        string
	Object    string
	Points    int
	Labels    int
	CreatedAt time.Time
}

// SelectionRepo handles saved selections.
type SelectionRepo struct {
	db *sql.DB
}

func NewSelectionRepo(db *sql.DB) *SelectionRepo { return &SelectionRepo{db: db} }

// Save stores sel and returns its new ID. The selection and its points are
// written in one transaction.
func (r *SelectionRepo) Save(ctx context.Context, sel viewer.Selection) (id string, err error) {
	if sel.Len() == 0 {
		return "", ErrEmptySelection
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save selection: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id = uuid.NewString()
	created := time.Now().UTC().Truncate(time.Second)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO selections(id, object, labels, created_at) VALUES (?, ?, ?, ?)`,
		id, sel.Object, len(sel.Indices), created); err != nil {
		return "", fmt.Errorf("save selection: %w", err)
	}
	if err = insertPoints(ctx, tx, id, sel); err != nil {
		return "", fmt.Errorf("save selection %s: %w", id, err)
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("save selection: %w", err)
	}
	return id, nil
}

// insertPoints writes one row per selected index, in label order. The
// cloud must hold exactly one point per index.
func insertPoints(ctx context.Context, tx *sql.Tx, id string, sel viewer.Selection) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO selection_points(selection_id, seq, point_index, label, x, y, z)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, group := range sel.Indices {
		for _, idx := range group.Indices {
			if seq >= len(sel.Cloud) {
				return fmt.Errorf("%d points for more than %d indices", len(sel.Cloud), seq)
			}
			p := sel.Cloud[seq]
			if _, err := stmt.ExecContext(ctx, id, seq, idx, p.Label, p.X, p.Y, p.Z); err != nil {
				return err
			}
			seq++
		}
	}
	if seq != len(sel.Cloud) {
		return fmt.Errorf("%d points for %d indices", len(sel.Cloud), seq)
	}
	return nil
}

// List returns all saved selections, newest first.
func (r *SelectionRepo) List(ctx context.Context) ([]SelectionInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT s.id, s.object, s.labels, s.created_at, COUNT(p.seq)
	FROM selections s
	LEFT JOIN selection_points p ON p.selection_id = s.id
	GROUP BY s.id
	ORDER BY s.created_at DESC, s.rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SelectionInfo
	for rows.Next() {
		var s SelectionInfo
		if err := rows.Scan(&s.ID, &s.Object, &s.Labels, &s.CreatedAt, &s.Points); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Points loads the selection with the given ID.
func (r *SelectionRepo) Points(ctx context.Context, id string) (viewer.Selection, error) {
	var sel viewer.Selection
	var labels int
	row := r.db.QueryRowContext(ctx, `SELECT object, labels FROM selections WHERE id = ?`, id)
	if err := row.Scan(&sel.Object, &labels); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return viewer.Selection{}, ErrNotFound
		}
		return viewer.Selection{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT point_index, label, x, y, z FROM selection_points
	WHERE selection_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return viewer.Selection{}, err
	}
	defer rows.Close()
	sel.Indices = make([]viewer.PointIndices, labels)
	for rows.Next() {
		var (
			idx int
			p   viewer.PointXYZL
		)
		if err := rows.Scan(&idx, &p.Label, &p.X, &p.Y, &p.Z); err != nil {
			return viewer.Selection{}, err
		}
		if int(p.Label) >= len(sel.Indices) {
			return viewer.Selection{}, fmt.Errorf("selection %s: label %d out of range", id, p.Label)
		}
		sel.Cloud = append(sel.Cloud, p)
		sel.Indices[p.Label].Indices = append(sel.Indices[p.Label].Indices, idx)
	}
	return sel, rows.Err()
}

// DeleteAll removes every saved selection and returns how many there were.
func (r *SelectionRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM selections`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
