package model

// Status is the outcome of a single chart or exported file.
type Status int

const (
	// StatusSaved indicates the chart was rendered and written.
	StatusSaved Status = iota

	// StatusFailed indicates loading, rendering or writing failed.
	StatusFailed

	// StatusCancelled indicates the run stopped before the chart was attempted,
	// either through fail-fast or an interrupt.
	StatusCancelled

	// StatusRead marks an input consumed by a run, such as the model
	// artifact of an export.
	StatusRead
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusRead:
		return "read"
	default:
		return "unknown"
	}
}

// ParseStatus converts the String form back to a Status.
// Unknown values map to StatusFailed.
func ParseStatus(s string) Status {
	switch s {
	case "saved":
		return StatusSaved
	case "cancelled":
		return StatusCancelled
	case "read":
		return StatusRead
	default:
		return StatusFailed
	}
}
