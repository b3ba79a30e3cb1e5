package api

import (
	"log/slog"
	"net/http"
	"strconv"
)

// trackingPixel is a 1x1 transparent GIF, 43 bytes.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// handleTrack serves the invoice tracking pixel. The view signal is best
// effort: whatever happens to the status update, the response is always
// the same 200 image so mail clients render nothing unusual.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	s.trackingHits.Inc()

	if id := r.URL.Query().Get("id"); id != "" {
		if _, err := s.invoices.RecordView(r.Context(), id); err != nil {
			slog.WarnContext(r.Context(), "record invoice view", "invoice_id", id, "error", err)
		}
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Content-Length", strconv.Itoa(len(trackingPixel)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(trackingPixel)
}
