package services

import (
	"strings"

	"github.com/google/uuid"
)

const (
	identifierCodePrefix = "ITM-"
	identifierCodeLength = 12
)

// GenerateIdentifierCode derives a scan code from the item id prefix. It is
// used when the caller supplies no code; uniqueness is still checked on write.
func GenerateIdentifierCode(id uuid.UUID) string {
	raw := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if len(raw) > identifierCodeLength {
		raw = raw[:identifierCodeLength]
	}
	return identifierCodePrefix + raw
}

// NormalizeIdentifierCode trims surrounding whitespace. Codes are compared
// case-sensitively.
func NormalizeIdentifierCode(code string) string {
	return strings.TrimSpace(code)
}
