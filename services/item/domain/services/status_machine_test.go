package services

import (
	"errors"
	"testing"

	"github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

func TestTransition_SameStateIsNoop(t *testing.T) {
	for _, s := range models.AllStatuses {
		if err := Transition(s, s); err != nil {
			t.Errorf("Transition(%s, %s) = %v, want nil", s, s, err)
		}
	}
}

func TestTransition_Table(t *testing.T) {
	allowed := map[[2]models.Status]bool{
		{models.StatusOperational, models.StatusMaintenance}: true,
		{models.StatusOperational, models.StatusRepair}:      true,
		{models.StatusOperational, models.StatusRetired}:     true,
		{models.StatusOperational, models.StatusLost}:        true,
		{models.StatusMaintenance, models.StatusOperational}: true,
		{models.StatusMaintenance, models.StatusRepair}:      true,
		{models.StatusMaintenance, models.StatusRetired}:     true,
		{models.StatusRepair, models.StatusOperational}:      true,
		{models.StatusRepair, models.StatusMaintenance}:      true,
		{models.StatusRepair, models.StatusRetired}:          true,
		{models.StatusRepair, models.StatusDisposed}:         true,
		{models.StatusRetired, models.StatusDisposed}:        true,
		{models.StatusLost, models.StatusOperational}:        true,
	}

	for _, from := range models.AllStatuses {
		for _, to := range models.AllStatuses {
			if from == to {
				continue
			}
			err := Transition(from, to)
			if allowed[[2]models.Status{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s: unexpected error %v", from, to, err)
				}
				continue
			}
			if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
			}
			var te *domain.TransitionError
			if !errors.As(err, &te) || te.From != from || te.To != to {
				t.Errorf("%s -> %s: expected TransitionError carrying both states, got %#v", from, to, err)
			}
		}
	}
}

func TestTransition_DisposedIsTerminal(t *testing.T) {
	if got := AllowedTransitions(models.StatusDisposed); len(got) != 0 {
		t.Fatalf("expected no transitions out of disposed, got %v", got)
	}
	if err := Transition(models.StatusDisposed, models.StatusOperational); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	got := AllowedTransitions(models.StatusOperational)
	got[0] = models.StatusDisposed
	if CanTransition(models.StatusOperational, models.StatusDisposed) {
		t.Fatal("mutating the returned slice changed the transition table")
	}
}
