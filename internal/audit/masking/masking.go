// Package masking redacts applicant contact details before they reach audit metadata.
package masking

import "strings"

const maskToken = "****"

// contactKeys are metadata keys that carry applicant contact details.
var contactKeys = map[string]bool{
	"email":           true,
	"phone":           true,
	"applicant_email": true,
	"applicant_phone": true,
	"notify_address":  true,
}

// MaskTail keeps only the last four characters.
func MaskTail(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, maskToken):
		return trimmed
	case len(trimmed) <= 4:
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskEmail keeps the first letter of the local part and the domain.
func MaskEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	at := strings.LastIndex(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return MaskTail(trimmed)
	}
	return trimmed[:1] + maskToken + trimmed[at:]
}

// IsContactKey reports whether values under key are masked.
func IsContactKey(key string) bool {
	return contactKeys[strings.ToLower(strings.TrimSpace(key))]
}

// MaskContact masks the contact fields of metadata in place and returns it.
// Nested maps are walked; other values are left alone.
func MaskContact(metadata map[string]any) map[string]any {
	for key, value := range metadata {
		if nested, ok := value.(map[string]any); ok {
			metadata[key] = MaskContact(nested)
			continue
		}
		if !IsContactKey(key) {
			continue
		}
		metadata[key] = maskValue(key, value)
	}
	return metadata
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if strings.Contains(strings.ToLower(key), "email") || strings.Contains(cast, "@") {
			return MaskEmail(cast)
		}
		return MaskTail(cast)
	case *string:
		if cast == nil {
			return nil
		}
		return maskValue(key, *cast)
	default:
		return value
	}
}
