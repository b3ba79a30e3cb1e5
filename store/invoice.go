package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type InvoiceRepo struct {
	db *sql.DB
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *Invoice) error {
	warnings, err := json.Marshal(inv.Warnings)
	if err != nil {
		return fmt.Errorf("marshal invoice warnings: %w", err)
	}
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, project_id, status, draft_link, pdf_link, warnings, viewed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ProjectID, inv.Status, inv.DraftLink, inv.PDFLink, string(warnings), inv.ViewedAt, createdAt)
	return err
}

func (r *InvoiceRepo) Get(ctx context.Context, id string) (*Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, status, draft_link, pdf_link, warnings, viewed_at, created_at
		 FROM invoices WHERE id = ?`, id)

	var inv Invoice
	var warnings string
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.Status, &inv.DraftLink, &inv.PDFLink,
		&warnings, &inv.ViewedAt, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(warnings), &inv.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal invoice warnings: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepo) Update(ctx context.Context, inv *Invoice) error {
	warnings, err := json.Marshal(inv.Warnings)
	if err != nil {
		return fmt.Errorf("marshal invoice warnings: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, draft_link = ?, pdf_link = ?, warnings = ?, viewed_at = ?
		 WHERE id = ?`,
		inv.Status, inv.DraftLink, inv.PDFLink, string(warnings), inv.ViewedAt, inv.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
	}
	return nil
}
