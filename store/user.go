package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type UserRepo struct {
	db *sql.DB
}

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, company_id, created_at FROM users WHERE id = ?`, id)

	var u User
	err := row.Scan(&u.ID, &u.Name, &u.CompanyID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, company_id) VALUES (?, ?, ?)`,
		u.ID, u.Name, u.CompanyID)
	return err
}

// GetByToken resolves an API bearer token to its user.
func (r *UserRepo) GetByToken(ctx context.Context, token string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.company_id, u.created_at
		 FROM api_tokens t JOIN users u ON u.id = t.user_id
		 WHERE t.token = ?`, token)

	var u User
	err := row.Scan(&u.ID, &u.Name, &u.CompanyID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("token: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) CreateToken(ctx context.Context, token, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_tokens (token, user_id) VALUES (?, ?)`, token, userID)
	return err
}
