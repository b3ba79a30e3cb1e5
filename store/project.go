package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type ProjectRepo struct {
	db *sql.DB
}

func (r *ProjectRepo) Create(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, company_id, customer_id, name, description, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.CustomerID, p.Name, p.Description, p.Status)
	return err
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, customer_id, name, description, status, created_at
		 FROM projects WHERE id = ?`, id)

	var p Project
	err := row.Scan(&p.ID, &p.CompanyID, &p.CustomerID, &p.Name, &p.Description, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET description = ?, status = ? WHERE id = ?`,
		p.Description, p.Status, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}
