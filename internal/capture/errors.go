package capture

import "errors"

// Sentinel errors classified by the coordinator when deciding whether to
// fall back to the next backend or terminate the capture.
var (
	// ErrSelectionCancelled marks a user-initiated cancellation. It is not a
	// failure: the coordinator turns it into an empty result.
	ErrSelectionCancelled = errors.New("selection cancelled")

	// ErrInvalidRegion marks a zero or negative capture extent.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrBackendUnavailable marks a backend whose runtime dependency could
	// not be loaded. The backend is permanently disabled for the process.
	ErrBackendUnavailable = errors.New("capture backend unavailable")

	// ErrPortalProtocol marks a malformed or incomplete portal response.
	ErrPortalProtocol = errors.New("portal protocol error")

	// ErrPortalTimeout marks a portal exchange with no completion signal
	// within the allotted window.
	ErrPortalTimeout = errors.New("portal response timeout")
)
