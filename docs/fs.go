package docs

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FSService is the credential-less implementation used for local runs and
// tests. Documents land on an afero filesystem and links point at the
// stored path.
type FSService struct {
	fs      afero.Fs
	baseDir string
}

func NewFSService(fs afero.Fs, baseDir string) (*FSService, error) {
	if err := fs.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &FSService{fs: fs, baseDir: baseDir}, nil
}

func (s *FSService) CreateDraft(ctx context.Context, req DraftRequest) (*File, error) {
	return s.write("drafts", req.Title+".txt", []byte(req.Content))
}

func (s *FSService) RenderPDF(ctx context.Context, req PDFRequest) (*File, error) {
	dir := "pdfs"
	if req.TargetFolderID != "" {
		dir = path.Join(dir, req.TargetFolderID)
	}
	return s.write(dir, req.Title+".pdf", []byte(req.Content))
}

func (s *FSService) StoreImage(ctx context.Context, name string, data []byte) (*File, error) {
	return s.write("images", name, data)
}

func (s *FSService) write(dir, name string, content []byte) (*File, error) {
	id := uuid.NewString()
	target := path.Join(s.baseDir, dir, id+"-"+sanitize(name))

	if err := s.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, target, content, 0o644); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	return &File{ID: id, WebViewLink: "file://" + target}, nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '-'
		}
		return r
	}, name)
}
