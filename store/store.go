package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by every lookup that matches no row.
var ErrNotFound = errors.New("store: not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store bundles the per-entity repositories over one database handle.
type Store struct {
	Users     *UserRepo
	Customers *CustomerRepo
	Projects  *ProjectRepo
	Offers    *OfferRepo
	Receipts  *ReceiptRepo
	Invoices  *InvoiceRepo

	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{
		Users:     &UserRepo{db: db},
		Customers: &CustomerRepo{db: db},
		Projects:  &ProjectRepo{db: db},
		Offers:    &OfferRepo{db: db},
		Receipts:  &ReceiptRepo{db: db},
		Invoices:  &InvoiceRepo{db: db},
		db:        db,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

type User struct {
	ID        string
	Name      string
	CompanyID string
	CreatedAt time.Time
}

type Customer struct {
	ID        string
	CompanyID string
	OwnerID   string
	Name      string
	Email     string
	Phone     string
	Type      string
	Address   string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
}

type Project struct {
	ID          string
	CompanyID   string
	CustomerID  string
	Name        string
	Description string
	Status      string
	CreatedAt   time.Time
}

type OfferItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type Offer struct {
	ID          string
	ProjectID   string
	Title       string
	Items       []OfferItem
	TotalAmount decimal.Decimal
	Status      string
	CreatedAt   time.Time
}

type Receipt struct {
	ID          string
	ProjectID   string
	Vendor      string
	Date        string
	TotalAmount decimal.Decimal
	Items       []string
	DocLink     string
	CreatedAt   time.Time
}

// Invoice rows are owned by the invoice package; the status column holds
// the state machine's string form.
type Invoice struct {
	ID        string
	ProjectID string
	Status    string
	DraftLink string
	PDFLink   string
	Warnings  []string
	ViewedAt  *time.Time
	CreatedAt time.Time
}
