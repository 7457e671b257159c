package models

import "time"

// MemoryStats reports system memory usage.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// CPUStats reports system CPU usage.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// ResolveStats reports coordinator resolve-path outcomes since startup.
type ResolveStats struct {
	Total          int64 `json:"total"`
	CacheWins      int64 `json:"cache_wins"`
	AuthorityWins  int64 `json:"authority_wins"`
	Failures       int64 `json:"failures"`
	Invalidations  int64 `json:"invalidations"`
	IntegrityFails int64 `json:"integrity_mismatches"`
}

// ServerStatsResponse is the /api/v1/stats payload.
type ServerStatsResponse struct {
	Uptime        string       `json:"uptime"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     time.Time    `json:"start_time"`
	CPU           CPUStats     `json:"cpu"`
	Memory        MemoryStats  `json:"memory"`
	Resolve       ResolveStats `json:"resolve"`
}
