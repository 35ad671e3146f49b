package circulation

// Analytics event names.
const (
	EventCheckOut    = "circulation_manager_check_out"
	EventCheckIn     = "circulation_manager_check_in"
	EventHoldPlace   = "circulation_manager_hold_place"
	EventHoldRelease = "circulation_manager_hold_release"
	EventFulfill     = "circulation_manager_fulfill"
)
