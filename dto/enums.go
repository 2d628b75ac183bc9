package dto

// EventStatus is the coarse lifecycle state of a sport event.
type EventStatus int

const (
	EventStatusUnknown EventStatus = iota
	EventStatusNotStarted
	EventStatusLive
	EventStatusSuspended
	EventStatusEnded
	EventStatusClosed
	EventStatusCancelled
	EventStatusDelayed
	EventStatusInterrupted
	EventStatusPostponed
	EventStatusAbandoned
)

var eventStatusNames = [...]string{
	EventStatusUnknown:     "unknown",
	EventStatusNotStarted:  "not_started",
	EventStatusLive:        "live",
	EventStatusSuspended:   "suspended",
	EventStatusEnded:       "ended",
	EventStatusClosed:      "closed",
	EventStatusCancelled:   "cancelled",
	EventStatusDelayed:     "delayed",
	EventStatusInterrupted: "interrupted",
	EventStatusPostponed:   "postponed",
	EventStatusAbandoned:   "abandoned",
}

func (s EventStatus) String() string {
	if s < 0 || int(s) >= len(eventStatusNames) {
		return "unknown"
	}
	return eventStatusNames[s]
}

// ParseEventStatus maps the textual form back, unknown text maps to
// EventStatusUnknown.
func ParseEventStatus(s string) EventStatus {
	for i, name := range eventStatusNames {
		if name == s {
			return EventStatus(i)
		}
	}
	return EventStatusUnknown
}

// BookingStatusValue is the booking state of an event for the client.
type BookingStatusValue int

const (
	BookingUnavailable BookingStatusValue = iota
	BookingBookable
	BookingBuyable
	BookingBooked
)

func (b BookingStatusValue) String() string {
	switch b {
	case BookingBookable:
		return "bookable"
	case BookingBuyable:
		return "buyable"
	case BookingBooked:
		return "booked"
	default:
		return "unavailable"
	}
}
