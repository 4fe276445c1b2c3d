package types

// Status is the operational state of a component.
type Status string

// Health status constants.
const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the component serves lookups but its data has integrity warnings.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the component cannot serve lookups.
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses from best to worst. Unknown values rank as unhealthy.
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// HealthStatus represents the health state of a registry or one of its sources.
type HealthStatus struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status Status `json:"status"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty"`

	// Details contains diagnostic context such as record counts or dial errors.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (h HealthStatus) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (h HealthStatus) IsDegraded() bool {
	return h.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (h HealthStatus) IsUnhealthy() bool {
	return h.Status == StatusUnhealthy
}

// Serving reports whether lookups can be answered, which is true for healthy and degraded.
func (h HealthStatus) Serving() bool {
	return h.Status.severity() < StatusUnhealthy.severity()
}

// Worse reports whether h is in a worse state than other.
func (h HealthStatus) Worse(other HealthStatus) bool {
	return h.Status.severity() > other.Status.severity()
}

// NewHealthyStatus creates a new healthy status with an optional message.
func NewHealthyStatus(message string) HealthStatus {
	return HealthStatus{
		Status:  StatusHealthy,
		Message: message,
	}
}

// NewDegradedStatus creates a new degraded status with a message and optional details.
func NewDegradedStatus(message string, details map[string]any) HealthStatus {
	return HealthStatus{
		Status:  StatusDegraded,
		Message: message,
		Details: details,
	}
}

// NewUnhealthyStatus creates a new unhealthy status with a message and optional details.
func NewUnhealthyStatus(message string, details map[string]any) HealthStatus {
	return HealthStatus{
		Status:  StatusUnhealthy,
		Message: message,
		Details: details,
	}
}
