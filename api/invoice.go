package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/byggassist/backend/invoice"
)

type draftRequest struct {
	ProjectID   string `json:"projectId"`
	AccessToken string `json:"accessToken"`
}

type finalizeRequest struct {
	InvoiceID   string `json:"invoiceId"`
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleInvoiceDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	inv, err := s.invoices.PrepareDraft(r.Context(), req.ProjectID, invoice.DraftOptions{
		AccessToken: req.AccessToken,
	})
	if err != nil {
		if invoice.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusBadGateway, "could not create invoice draft")
		return
	}

	warnings := inv.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"id":       inv.ID,
		"link":     inv.DraftLink,
		"warnings": warnings,
	})
}

func (s *Server) handleInvoiceFinalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := s.invoices.Finalize(r.Context(), invoice.FinalizeInput{
		InvoiceID:   req.InvoiceID,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		var fe *invoice.FinalizationError
		if errors.As(err, &fe) {
			writeError(w, http.StatusUnprocessableEntity, fe.Reason)
			return
		}
		writeError(w, http.StatusBadGateway, "could not finalize invoice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      inv.ID,
		"pdfLink": inv.PDFLink,
	})
}

func (s *Server) handleInvoiceSend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	inv, err := s.invoices.MarkSent(r.Context(), id)
	if err != nil {
		if invoice.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not update invoice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      inv.ID,
		"status":  inv.Status,
	})
}
