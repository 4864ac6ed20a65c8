package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

func TestSentinelErrors_Messages(t *testing.T) {
	if ErrItemNotFound.Error() != "item not found" {
		t.Fatalf("unexpected message: %q", ErrItemNotFound.Error())
	}
	if ErrItemAlreadyExists.Error() != "item already exists" {
		t.Fatalf("unexpected message: %q", ErrItemAlreadyExists.Error())
	}
	if ErrInvalidItemName.Error() != "invalid item name" {
		t.Fatalf("unexpected message: %q", ErrInvalidItemName.Error())
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrItemNotFound)
	if !errors.Is(wrapped, ErrItemNotFound) {
		t.Fatal("errors.Is must match wrapped ErrItemNotFound")
	}

	wrapped2 := fmt.Errorf("%w: %w", ErrInvalidItemName, errors.New("too long"))
	if !errors.Is(wrapped2, ErrInvalidItemName) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidItemName")
	}
}

func TestTransitionError(t *testing.T) {
	err := fmt.Errorf("set status: %w", &TransitionError{From: models.StatusDisposed, To: models.StatusOperational})

	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("TransitionError must match ErrInvalidTransition")
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatal("errors.As must find *TransitionError")
	}
	if te.From != models.StatusDisposed || te.To != models.StatusOperational {
		t.Fatalf("unexpected edge %s -> %s", te.From, te.To)
	}
	if !strings.Contains(err.Error(), "disposed -> operational") {
		t.Fatalf("message should name the edge: %q", err.Error())
	}
}

func TestCustomFieldsError(t *testing.T) {
	err := &CustomFieldsError{Fields: map[string]string{"voltage": "must be a number", "serial": "is required"}}

	if !errors.Is(err, ErrInvalidCustomFields) {
		t.Fatal("CustomFieldsError must match ErrInvalidCustomFields")
	}
	if got := err.Error(); got != "invalid custom fields: serial: is required; voltage: must be a number" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"item not found", ErrItemNotFound, KindNotFound},
		{"wrapped parent not found", fmt.Errorf("move: %w", ErrParentNotFound), KindNotFound},
		{"location mismatch", ErrLocationTenancyMismatch, KindNotFound},
		{"cycle", ErrCircularDependency, KindConflict},
		{"self parent", ErrSelfParent, KindConflict},
		{"transition", &TransitionError{From: models.StatusRetired, To: models.StatusLost}, KindConflict},
		{"has children", fmt.Errorf("%w: 2 descendants", ErrHasChildren), KindConflict},
		{"concurrent abort", fmt.Errorf("%w: %w", ErrConcurrentModification, errors.New("deadlock detected")), KindConflict},
		{"custom fields", &CustomFieldsError{Fields: map[string]string{"a": "b"}}, KindValidation},
		{"name", ErrInvalidItemName, KindValidation},
		{"other", errors.New("db down"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
