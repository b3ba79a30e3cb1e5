// Package invoice owns the lifecycle of outgoing invoices: draft creation,
// finalization, and the passive view-tracking signal.
package invoice

import (
	"fmt"
	"time"

	"github.com/byggassist/backend/store"
)

// Status values are strictly ordered; transitions only ever move forward.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusFinalized Status = "finalized"
	StatusPaid      Status = "paid"
)

var statusRank = map[Status]int{
	StatusDraft:     0,
	StatusSent:      1,
	StatusViewed:    2,
	StatusFinalized: 3,
	StatusPaid:      4,
}

// AtLeast reports whether s is at or past other in the lifecycle order.
func (s Status) AtLeast(other Status) bool {
	return statusRank[s] >= statusRank[other]
}

func (s Status) valid() bool {
	_, ok := statusRank[s]
	return ok
}

type Invoice struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Status    Status     `json:"status"`
	DraftLink string     `json:"draftLink,omitempty"`
	PDFLink   string     `json:"pdfLink,omitempty"`
	Warnings  []string   `json:"warnings"`
	ViewedAt  *time.Time `json:"viewedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func fromRecord(rec *store.Invoice) (*Invoice, error) {
	status := Status(rec.Status)
	if !status.valid() {
		return nil, fmt.Errorf("invoice %s has unknown status %q", rec.ID, rec.Status)
	}
	return &Invoice{
		ID:        rec.ID,
		ProjectID: rec.ProjectID,
		Status:    status,
		DraftLink: rec.DraftLink,
		PDFLink:   rec.PDFLink,
		Warnings:  rec.Warnings,
		ViewedAt:  rec.ViewedAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (inv *Invoice) toRecord() *store.Invoice {
	warnings := inv.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &store.Invoice{
		ID:        inv.ID,
		ProjectID: inv.ProjectID,
		Status:    string(inv.Status),
		DraftLink: inv.DraftLink,
		PDFLink:   inv.PDFLink,
		Warnings:  warnings,
		ViewedAt:  inv.ViewedAt,
		CreatedAt: inv.CreatedAt,
	}
}
