package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the managed index is down; search still works through the fallback.
	Degraded Status = "degraded"
	// Unhealthy indicates the primary store is down.
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

// Component names in Report.Checks.
const (
	ComponentDatabase    = "database"
	ComponentSearchIndex = "search_index"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexPinger
}

// New creates a Service. index is nil when the managed index is disabled.
func New(db DBPinger, index IndexPinger) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentDatabase] = CheckOK
	}

	if s.index != nil {
		if err := s.index.Ping(ctx); err != nil {
			checks[ComponentSearchIndex] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentSearchIndex] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
