package docs

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFSServiceWritesDocuments(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	svc, err := NewFSService(fs, "documents")
	require.NoError(t, err)

	file, err := svc.CreateDraft(context.Background(), DraftRequest{
		Title:   "Invoice draft - Garage",
		Content: "line items",
	})
	require.NoError(t, err)
	require.NotEmpty(t, file.ID)
	require.Contains(t, file.WebViewLink, "file://documents/drafts/")

	// Spaces and separators in titles must not escape the directory.
	require.Contains(t, file.WebViewLink, "Invoice-draft---Garage.txt")

	exists, err := afero.DirExists(fs, "documents/drafts")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestFSServiceRenderPDFTargetFolder(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	svc, err := NewFSService(fs, "documents")
	require.NoError(t, err)

	file, err := svc.RenderPDF(context.Background(), PDFRequest{
		Title:          "Invoice",
		Content:        "final",
		TargetFolderID: "invoices-2026",
	})
	require.NoError(t, err)
	require.Contains(t, file.WebViewLink, "documents/pdfs/invoices-2026/")
}

func TestFSServiceStoreImage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	svc, err := NewFSService(fs, "documents")
	require.NoError(t, err)

	file, err := svc.StoreImage(context.Background(), "receipt 1.jpg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	require.Contains(t, file.WebViewLink, "receipt-1.jpg")
}
