package model

// HealthStatus describes the running service for the health endpoint.
type HealthStatus struct {
	Status       string `json:"status"`
	Upstream     string `json:"upstream"`
	CacheEntries int    `json:"cache_entries"`
	Uptime       string `json:"uptime"`
}
