package models

// HealthStatus is the outcome of a proxy health probe.
type HealthStatus string

const (
	HealthStatusOK    HealthStatus = "ok"
	HealthStatusError HealthStatus = "error"
)

// HealthResult is returned by health probes. Message is set only on error.
type HealthResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitzero"`
}

// OK reports whether the probe succeeded.
func (r HealthResult) OK() bool {
	return r.Status == HealthStatusOK
}
