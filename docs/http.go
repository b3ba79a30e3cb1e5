package docs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/byggassist/backend/resilience"
)

// HTTPService calls the hosted document service. Transient failures are
// retried with exponential backoff; a run of failures opens the circuit
// so a dead document service cannot pile up goroutines.
type HTTPService struct {
	baseURL string
	token   string
	client  *http.Client
	breaker *resilience.CircuitBreaker
	retry   *resilience.RetryConfig
}

func NewHTTPService(baseURL, token string) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		breaker: resilience.NewCircuitBreaker("docs", 5, 10*time.Second),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (s *HTTPService) CreateDraft(ctx context.Context, req DraftRequest) (*File, error) {
	return s.post(ctx, "/v1/drafts", req, req.AccessToken)
}

func (s *HTTPService) RenderPDF(ctx context.Context, req PDFRequest) (*File, error) {
	return s.post(ctx, "/v1/pdfs", req, req.AccessToken)
}

func (s *HTTPService) StoreImage(ctx context.Context, name string, data []byte) (*File, error) {
	return s.post(ctx, "/v1/images", map[string]string{
		"name": name,
		"data": base64.StdEncoding.EncodeToString(data),
	}, "")
}

func (s *HTTPService) post(ctx context.Context, path string, body any, accessToken string) (*File, error) {
	if !s.breaker.Allow() {
		return nil, fmt.Errorf("document service: %w", resilience.ErrCircuitOpen)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode document request: %w", err)
	}

	operation := func() (*File, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		token := s.token
		if accessToken != "" {
			token = accessToken
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("document service: status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return nil, backoff.Permanent(fmt.Errorf("document service: status %d", resp.StatusCode))
		}

		var file File
		if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode document response: %w", err))
		}
		return &file, nil
	}

	file, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(s.retry.Backoff()),
		backoff.WithMaxTries(s.retry.MaxAttempts),
	)
	s.breaker.RecordResult(err)
	if err != nil {
		return nil, err
	}
	return file, nil
}
