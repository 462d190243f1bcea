package model

const (
	HealthHealthy  = "healthy"
	HealthDraining = "draining"
)

// HealthStatus represents the health check status. Status is HealthDraining once shutdown
// started, so load balancers stop sending deliveries.
type HealthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	InFlight int    `json:"in_flight"`
}
