package models

import "fmt"

// Status is the lifecycle state of an Item. Transitions between states are
// governed by the status machine in the domain services package.
type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusRepair      Status = "repair"
	StatusRetired     Status = "retired"
	StatusDisposed    Status = "disposed"
	StatusLost        Status = "lost"
)

// AllStatuses lists every lifecycle state in declaration order.
var AllStatuses = []Status{
	StatusOperational,
	StatusMaintenance,
	StatusRepair,
	StatusRetired,
	StatusDisposed,
	StatusLost,
}

// ParseStatus converts s into a Status or returns an error for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the declared states.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the underlying string value.
func (s Status) String() string {
	return string(s)
}
