package handlers

import (
	"context"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/database"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        *database.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database used for the connectivity check.
func (h *HealthHandler) WithDB(db *database.DB) *HealthHandler {
	h.db = db
	return h
}

// MemoryInfo reports process-visible memory usage.
type MemoryInfo struct {
	TotalMB     float64 `json:"total_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// ComponentHealth reports one dependency's status.
type ComponentHealth struct {
	Status string `json:"status" enum:"ok,degraded,unavailable"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status        string                     `json:"status"`
	Timestamp     string                     `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Load1         float64                    `json:"load1"`
	CPUCores      int                        `json:"cpu_cores"`
	Memory        MemoryInfo                 `json:"memory"`
	Components    map[string]ComponentHealth `json:"components"`
}

// HealthInput is the (empty) input for the health check.
type HealthInput struct{}

// HealthOutput is the output for the health check.
type HealthOutput struct {
	Body HealthResponse
}

// Register registers the health route with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns service health including system metrics and database connectivity",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth reports service health. System metric failures degrade to zero
// values rather than failing the endpoint.
func (h *HealthHandler) GetHealth(ctx context.Context, _ *HealthInput) (*HealthOutput, error) {
	now := time.Now()

	resp := HealthResponse{
		Status:        "healthy",
		Timestamp:     now.UTC().Format(time.RFC3339),
		Version:       h.version,
		UptimeSeconds: now.Sub(h.startTime).Seconds(),
		CPUCores:      runtime.NumCPU(),
		Components:    map[string]ComponentHealth{},
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		resp.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		resp.Memory = MemoryInfo{
			TotalMB:     float64(vm.Total) / 1024 / 1024,
			UsedMB:      float64(vm.Used) / 1024 / 1024,
			UsedPercent: vm.UsedPercent,
		}
	}

	dbHealth := ComponentHealth{Status: "ok"}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			dbHealth = ComponentHealth{Status: "unavailable", Detail: err.Error()}
			resp.Status = "degraded"
		}
	}
	resp.Components["database"] = dbHealth

	return &HealthOutput{Body: resp}, nil
}
