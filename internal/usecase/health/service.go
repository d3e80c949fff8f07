package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store  StorePinger
	assets AssetChecker
}

// New creates a Service. assets can be nil when no asset backend is configured.
func New(store StorePinger, assets AssetChecker) *Service {
	return &Service{store: store, assets: assets}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.assets != nil {
		if err := s.assets.HealthCheck(ctx); err != nil {
			checks["assets"] = CheckError
		} else {
			checks["assets"] = CheckOK
		}
	}

	// Store down is Unhealthy; assets down is Degraded.
	status := Healthy
	switch {
	case checks["store"] == CheckError:
		status = Unhealthy
	case checks["assets"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
