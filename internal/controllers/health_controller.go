package controllers

import (
	"fmt"
	"net/http"
	"time"
	"withings-mcp/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.HealthDataServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status          string     `json:"status"`
	Uptime          string     `json:"uptime"`
	UptimeSeconds   float64    `json:"uptime_seconds"`
	Authenticated   bool       `json:"authenticated"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	TokenExpiresAt  *time.Time `json:"token_expires_at,omitempty"`
}

// Health reports liveness and whether a Withings token is on hand. A
// missing token is reported as status "unauthenticated" with HTTP 200.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	token := hc.service.TokenStatus()
	resp := healthResponse{
		Status:          "ok",
		Uptime:          formatDuration(uptime),
		UptimeSeconds:   uptime.Seconds(),
		Authenticated:   token.Authenticated,
		HasRefreshToken: token.HasRefreshToken,
		TokenExpiresAt:  token.ExpiresAt,
	}
	if !token.Authenticated {
		resp.Status = "unauthenticated"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.HealthDataServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		startTime: time.Now(),
	}
}
