// Package docs talks to the external document/drive service that hosts
// invoice drafts, rendered PDFs and receipt images.
package docs

import "context"

// File references a document stored with the external service.
type File struct {
	ID          string `json:"fileId"`
	WebViewLink string `json:"webViewLink"`
}

type DraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	// AccessToken optionally carries the caller's own document-service
	// credential instead of the service account.
	AccessToken string `json:"-"`
}

type PDFRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	TargetFolderID string `json:"targetFolderId,omitempty"`
	AccessToken    string `json:"-"`
}

type Service interface {
	// CreateDraft creates an editable draft document and returns its link.
	CreateDraft(ctx context.Context, req DraftRequest) (*File, error)
	// RenderPDF produces the final, immutable document.
	RenderPDF(ctx context.Context, req PDFRequest) (*File, error)
	// StoreImage persists an uploaded image (receipt photos).
	StoreImage(ctx context.Context, name string, data []byte) (*File, error)
}
