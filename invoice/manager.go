package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/byggassist/backend/docs"
	"github.com/byggassist/backend/store"
)

// FinalizationError marks finalize attempts on a missing draft or with
// required fields absent.
type FinalizationError struct {
	Reason string
	Err    error
}

func (e *FinalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("finalize invoice: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("finalize invoice: %s", e.Reason)
}

func (e *FinalizationError) Unwrap() error {
	return e.Err
}

type ManagerOptions struct {
	Clock func() time.Time
}

type ManagerOption func(*ManagerOptions)

func WithClock(clock func() time.Time) ManagerOption {
	return func(o *ManagerOptions) {
		o.Clock = clock
	}
}

// Manager applies lifecycle transitions as read-modify-write operations
// against the store. Transitions never move a status backwards; repeated
// passive signals are safe.
type Manager struct {
	store *store.Store
	docs  docs.Service
	clock func() time.Time
}

func NewManager(st *store.Store, docsService docs.Service, opts ...ManagerOption) *Manager {
	options := &ManagerOptions{
		Clock: time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Manager{
		store: st,
		docs:  docsService,
		clock: options.Clock,
	}
}

type DraftOptions struct {
	// AccessToken is the caller's document-service credential, forwarded
	// to the draft creation call when set.
	AccessToken string
}

// PrepareDraft computes line items from the project's offers, creates the
// editable draft document, and persists a new draft invoice. Soft
// validation problems (missing pricing, missing customer data) are
// collected as warnings; a draft with warnings is still valid.
func (m *Manager) PrepareDraft(ctx context.Context, projectID string, opts DraftOptions) (*Invoice, error) {
	project, err := m.store.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("prepare draft: %w", err)
	}

	var warnings []string

	offers, err := m.store.Offers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("prepare draft: list offers: %w", err)
	}
	if len(offers) == 0 {
		warnings = append(warnings, "project has no offers; invoice has no line items")
	}

	if project.CustomerID == "" {
		warnings = append(warnings, "project has no customer")
	} else {
		customer, err := m.store.Customers.Get(ctx, project.CustomerID)
		if err != nil && !store.IsNotFound(err) {
			return nil, fmt.Errorf("prepare draft: %w", err)
		}
		switch {
		case err != nil:
			warnings = append(warnings, "project customer no longer exists")
		case customer.Address == "":
			warnings = append(warnings, "customer has no billing address")
		}
	}

	content, pricingWarnings := renderInvoiceContent(project, offers)
	warnings = append(warnings, pricingWarnings...)

	file, err := m.docs.CreateDraft(ctx, docs.DraftRequest{
		Title:       fmt.Sprintf("Invoice draft - %s", project.Name),
		Content:     content,
		AccessToken: opts.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare draft: create document: %w", err)
	}

	inv := &Invoice{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Status:    StatusDraft,
		DraftLink: file.WebViewLink,
		Warnings:  warnings,
		CreatedAt: m.clock(),
	}

	if err := m.store.Invoices.Create(ctx, inv.toRecord()); err != nil {
		return nil, fmt.Errorf("prepare draft: save invoice: %w", err)
	}

	return inv, nil
}

type FinalizeInput struct {
	InvoiceID   string
	AccessToken string
}

// Finalize renders the final document for an existing draft and advances
// the invoice to finalized. Missing drafts and missing required fields
// fail with FinalizationError instead of creating inconsistent state.
func (m *Manager) Finalize(ctx context.Context, input FinalizeInput) (*Invoice, error) {
	if input.InvoiceID == "" {
		return nil, &FinalizationError{Reason: "invoice id is required"}
	}

	rec, err := m.store.Invoices.Get(ctx, input.InvoiceID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, &FinalizationError{Reason: "draft no longer exists", Err: err}
		}
		return nil, fmt.Errorf("finalize: %w", err)
	}

	inv, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}

	if inv.Status.AtLeast(StatusFinalized) {
		return nil, &FinalizationError{Reason: fmt.Sprintf("invoice is already %s", inv.Status)}
	}
	if inv.DraftLink == "" {
		return nil, &FinalizationError{Reason: "invoice has no draft document"}
	}

	project, err := m.store.Projects.Get(ctx, inv.ProjectID)
	if err != nil {
		return nil, &FinalizationError{Reason: "invoice project no longer exists", Err: err}
	}

	offers, err := m.store.Offers.ListByProject(ctx, inv.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("finalize: list offers: %w", err)
	}

	content, _ := renderInvoiceContent(project, offers)
	file, err := m.docs.RenderPDF(ctx, docs.PDFRequest{
		Title:       fmt.Sprintf("Invoice - %s", project.Name),
		Content:     content,
		AccessToken: input.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("finalize: render pdf: %w", err)
	}

	inv.Status = StatusFinalized
	inv.PDFLink = file.WebViewLink

	if err := m.store.Invoices.Update(ctx, inv.toRecord()); err != nil {
		return nil, fmt.Errorf("finalize: save invoice: %w", err)
	}

	return inv, nil
}

// MarkSent records that the invoice left the building. Calling it on an
// invoice already past sent is a no-op.
func (m *Manager) MarkSent(ctx context.Context, invoiceID string) (*Invoice, error) {
	return m.advance(ctx, invoiceID, StatusSent, nil)
}

// RecordView applies the passive view-tracking signal: sent invoices move
// to viewed with the view time recorded. Invoices already viewed or past
// it keep their status and original view time, so re-delivery of the
// signal is always safe.
func (m *Manager) RecordView(ctx context.Context, invoiceID string) (*Invoice, error) {
	viewedAt := m.clock()
	return m.advance(ctx, invoiceID, StatusViewed, &viewedAt)
}

// MarkPaid closes the lifecycle; the invoice is terminal afterwards.
func (m *Manager) MarkPaid(ctx context.Context, invoiceID string) (*Invoice, error) {
	return m.advance(ctx, invoiceID, StatusPaid, nil)
}

// advance moves an invoice forward to target unless it is already at or
// past it. The no-op branch rewrites the current status unchanged, which
// keeps concurrent signals idempotent without a lock.
func (m *Manager) advance(ctx context.Context, invoiceID string, target Status, viewedAt *time.Time) (*Invoice, error) {
	rec, err := m.store.Invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	inv, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}

	if inv.Status.AtLeast(target) {
		slog.DebugContext(ctx, "invoice already at or past target status",
			"invoice_id", invoiceID, "status", inv.Status, "target", target)
		if err := m.store.Invoices.Update(ctx, inv.toRecord()); err != nil {
			return nil, err
		}
		return inv, nil
	}

	inv.Status = target
	if target == StatusViewed && inv.ViewedAt == nil {
		inv.ViewedAt = viewedAt
	}

	if err := m.store.Invoices.Update(ctx, inv.toRecord()); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns the invoice or store.ErrNotFound.
func (m *Manager) Get(ctx context.Context, invoiceID string) (*Invoice, error) {
	rec, err := m.store.Invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// renderInvoiceContent produces the plain-text body handed to the
// document service, plus per-line-item pricing warnings.
func renderInvoiceContent(project *store.Project, offers []*store.Offer) (string, []string) {
	var b strings.Builder
	var warnings []string

	fmt.Fprintf(&b, "Invoice for project: %s\n\n", project.Name)

	total := decimal.Zero
	for _, offer := range offers {
		fmt.Fprintf(&b, "%s (%s)\n", offer.Title, offer.Status)
		for _, item := range offer.Items {
			lineTotal := item.Quantity.Mul(item.UnitPrice)
			fmt.Fprintf(&b, "  %s: %s x %s = %s\n",
				item.Description, item.Quantity, item.UnitPrice, lineTotal)
			if item.UnitPrice.IsZero() {
				warnings = append(warnings, fmt.Sprintf("missing pricing for %q", item.Description))
			}
			total = total.Add(lineTotal)
		}
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", total)
	return b.String(), warnings
}

// IsNotFound reports whether err means the referenced invoice is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
