package models

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ItemName is the display name of an item: valid UTF-8, 1 to 255 characters.
// Whitespace and control-character rules live in services.ValidateName.
type ItemName string

const maxItemNameRunes = 255

// NewItemName checks the structural constraints. Length counts characters,
// not bytes, so "Kühlraum" is 8 long.
func NewItemName(s string) (ItemName, error) {
	if s == "" {
		return "", errors.New("item name must not be empty")
	}
	if !utf8.ValidString(s) {
		return "", errors.New("item name must be valid UTF-8")
	}
	if n := utf8.RuneCountInString(s); n > maxItemNameRunes {
		return "", fmt.Errorf("item name has %d characters, at most %d allowed", n, maxItemNameRunes)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}
