package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type ReceiptRepo struct {
	db *sql.DB
}

func (r *ReceiptRepo) Create(ctx context.Context, rec *Receipt) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("marshal receipt items: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO receipts (id, project_id, vendor, date, total_amount, items, doc_link)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectID, rec.Vendor, rec.Date, rec.TotalAmount.String(), string(items), rec.DocLink)
	return err
}

func (r *ReceiptRepo) ListByProject(ctx context.Context, projectID string) ([]*Receipt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, vendor, date, total_amount, items, doc_link, created_at
		 FROM receipts WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*Receipt
	for rows.Next() {
		var rec Receipt
		var items, total string
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Vendor, &rec.Date, &total, &items, &rec.DocLink, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &rec.Items); err != nil {
			return nil, fmt.Errorf("unmarshal receipt items: %w", err)
		}
		if rec.TotalAmount, err = parseAmount(total); err != nil {
			return nil, err
		}
		receipts = append(receipts, &rec)
	}
	return receipts, rows.Err()
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
