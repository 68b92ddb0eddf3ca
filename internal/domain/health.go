package domain

// ServiceHealth reports the health of a single dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus is the aggregate health report for /healthz.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// ServiceMetrics is a JSON snapshot of the cartera pipeline metrics,
// served alongside the Prometheus endpoint for the app's diagnostics screen.
type ServiceMetrics struct {
	TotalRequests   int64   `json:"total_requests"`
	ErrorRate       float64 `json:"error_rate"`
	UpstreamErrors  int64   `json:"upstream_errors"`
	UpstreamRetries int64   `json:"upstream_retries"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	Period          string  `json:"period"`
}
