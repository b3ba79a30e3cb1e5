package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type CustomerRepo struct {
	db *sql.DB
}

func (r *CustomerRepo) Create(ctx context.Context, c *Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, company_id, owner_id, name, email, phone, type, address, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompanyID, c.OwnerID, c.Name, c.Email, c.Phone, c.Type, c.Address, c.Latitude, c.Longitude)
	return err
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (*Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, owner_id, name, email, phone, type, address, latitude, longitude, created_at
		 FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (r *CustomerRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, owner_id, name, email, phone, type, address, latitude, longitude, created_at
		 FROM customers WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.OwnerID, &c.Name, &c.Email, &c.Phone,
		&c.Type, &c.Address, &c.Latitude, &c.Longitude, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
