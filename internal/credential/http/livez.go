package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// LivezHandler reports basic process health. Always 200 while the process
// is serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, credsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
