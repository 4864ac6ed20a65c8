package services

import (
	"github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// transitions is the only place lifecycle edges are declared.
var transitions = map[models.Status][]models.Status{
	models.StatusOperational: {models.StatusMaintenance, models.StatusRepair, models.StatusRetired, models.StatusLost},
	models.StatusMaintenance: {models.StatusOperational, models.StatusRepair, models.StatusRetired},
	models.StatusRepair:      {models.StatusOperational, models.StatusMaintenance, models.StatusRetired, models.StatusDisposed},
	models.StatusRetired:     {models.StatusDisposed},
	models.StatusDisposed:    {},
	models.StatusLost:        {models.StatusOperational},
}

// Transition validates moving from current to requested. Staying in the same
// state always succeeds.
func Transition(current, requested models.Status) error {
	if current == requested {
		return nil
	}
	if !CanTransition(current, requested) {
		return &domain.TransitionError{From: current, To: requested}
	}
	return nil
}

// CanTransition reports whether current -> requested is a declared edge.
func CanTransition(current, requested models.Status) bool {
	for _, s := range transitions[current] {
		if s == requested {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the states reachable from current in one step.
func AllowedTransitions(current models.Status) []models.Status {
	out := make([]models.Status, len(transitions[current]))
	copy(out, transitions[current])
	return out
}
