package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// hopHeaders never cross the proxy in either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// handleModelProxy forwards a request verbatim to the configured model
// backend and streams the response back without buffering. The upstream
// never sees the client's origin headers, and the client never sees a
// raw transport error: backend connect failures map to one fixed 502.
func (s *Server) handleModelProxy(w http.ResponseWriter, r *http.Request) {
	if s.modelBackendURL == "" {
		writeError(w, http.StatusNotFound, "no model backend configured")
		return
	}

	target := strings.TrimSuffix(s.modelBackendURL, "/") + "/" + chi.URLParam(r, "*")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		writeError(w, http.StatusBadGateway, "model backend unreachable")
		return
	}

	upstream.Header = r.Header.Clone()
	for _, h := range hopHeaders {
		upstream.Header.Del(h)
	}
	// The backend should see only itself as the target, not the host the
	// client dialed.
	upstream.Header.Del("Host")
	upstream.Header.Del("Origin")
	upstream.Header.Del("Referer")
	upstream.Header.Del("X-Forwarded-For")
	upstream.Header.Del("X-Forwarded-Host")
	upstream.Header.Del("X-Forwarded-Proto")
	if s.modelAPIKey != "" {
		upstream.Header.Set("Authorization", "Bearer "+s.modelAPIKey)
	}

	resp, err := s.proxyClient.Do(upstream)
	if err != nil {
		s.proxyFailures.Inc()
		slog.ErrorContext(r.Context(), "model proxy request failed", "target", target, "error", err)
		writeError(w, http.StatusBadGateway, "model backend unreachable")
		return
	}
	defer resp.Body.Close()

	header := w.Header()
	for key, values := range resp.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	for _, h := range hopHeaders {
		header.Del(h)
	}
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Client went away; stop relaying.
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				slog.WarnContext(r.Context(), "model proxy stream interrupted", "error", err)
			}
			return
		}
	}
}
