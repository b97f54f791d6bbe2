package ports

import (
	"strings"

	"github.com/aretw0/viben/pkg/domain"
)

// SanitizeID strips every character outside [A-Za-z0-9_-] so the id can be
// used as a storage key. An id that is empty after sanitization is rejected.
func SanitizeID(id string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "", domain.NewShapeError("id", "is empty after sanitization")
	}
	return sb.String(), nil
}
