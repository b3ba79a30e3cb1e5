package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type OfferRepo struct {
	db *sql.DB
}

func (r *OfferRepo) Create(ctx context.Context, o *Offer) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal offer items: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO offers (id, project_id, title, items, total_amount, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.ProjectID, o.Title, string(items), o.TotalAmount.String(), o.Status)
	return err
}

func (r *OfferRepo) ListByProject(ctx context.Context, projectID string) ([]*Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, title, items, total_amount, status, created_at
		 FROM offers WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*Offer
	for rows.Next() {
		var o Offer
		var items, total string
		if err := rows.Scan(&o.ID, &o.ProjectID, &o.Title, &items, &total, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal offer items: %w", err)
		}
		if o.TotalAmount, err = parseAmount(total); err != nil {
			return nil, err
		}
		offers = append(offers, &o)
	}
	return offers, rows.Err()
}
