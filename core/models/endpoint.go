package models

import "time"

// EndpointMaintenanceRecord tracks an inference endpoint's liveness and idle
// timers. One record exists per execution while its endpoint is live or being
// created; it is the source of truth for cleanup eligibility.
type EndpointMaintenanceRecord struct {
	ID               string // same id as the owning TrainingExecution
	EndpointName     string
	EndpointArn      string
	ConfigName       string
	ConfigArn        string
	Status           EndpointStatus
	LastModifiedTime time.Time
	LastInvokeTime   *time.Time
}

// ExpiredAt reports whether the record is eligible for cleanup at the given
// instant. An endpoint that was never invoked expires on modification age
// alone; once invoked it must additionally be idle since the last invocation.
func (r *EndpointMaintenanceRecord) ExpiredAt(now time.Time, expiry time.Duration) bool {
	if r.LastInvokeTime == nil {
		return r.LastModifiedTime.Add(expiry).Before(now)
	}
	return r.LastModifiedTime.Add(expiry).Before(now) && r.LastInvokeTime.Add(expiry).Before(now)
}
