// FilePath: internal/models/api.models.filters.go
package models

// EventFilters defines the available filter options for event listings.
// Decoded from query parameters with gorilla/schema.
type EventFilters struct {
	Kind  EventKind `schema:"kind"`
	Since string    `schema:"since"` // RFC3339, optional
	Limit int       `schema:"limit"`
}

// StatisticsFilters defines the query options for the statistics endpoint.
type StatisticsFilters struct {
	Kind        EventKind `schema:"kind"`
	PeriodHours float64   `schema:"period_hours"`
}
