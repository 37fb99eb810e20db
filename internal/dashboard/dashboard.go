// Package dashboard exposes the read-only occupancy rollup. Counts are
// recomputed from authoritative store queries on every request; there is no
// cached process-wide state to keep consistent.
package dashboard

import "context"

// Stats is the occupancy dashboard payload. Vacant + BookedPending +
// Occupied always sums to TotalUnits.
type Stats struct {
	TotalUnits          int64 `json:"total"`
	Vacant              int64 `json:"vacant"`
	BookedPending       int64 `json:"booked_pending"`
	Occupied            int64 `json:"occupied"`
	PendingApplications int64 `json:"pending_applications"`
	TotalEmployees      int64 `json:"total_employees"`
}

// Service computes dashboard statistics.
type Service interface {
	Stats(ctx context.Context) (Stats, error)
}
