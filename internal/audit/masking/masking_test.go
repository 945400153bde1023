package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j****@example.org", MaskEmail("jordan@example.org"))
	assert.Equal(t, "****.org", MaskEmail("@example.org"))
	assert.Equal(t, "", MaskEmail("  "))
}

func TestMaskTailIsIdempotent(t *testing.T) {
	once := MaskTail("555-0100")
	assert.Equal(t, "****0100", once)
	assert.Equal(t, once, MaskTail(once))
	assert.Equal(t, "****", MaskTail("123"))
}

func TestMaskContactOnlyTouchesContactKeys(t *testing.T) {
	phone := "555-0100"
	got := MaskContact(map[string]any{
		"email":              "jordan@example.org",
		"phone":              &phone,
		"notify_address":     "casey@example.org",
		"application_number": "SUP-00042",
		"total_fee":          135.0,
		"applicant": map[string]any{
			"applicant_phone": "555-0199",
		},
	})

	assert.Equal(t, "j****@example.org", got["email"])
	assert.Equal(t, "****0100", got["phone"])
	assert.Equal(t, "c****@example.org", got["notify_address"])
	assert.Equal(t, "SUP-00042", got["application_number"])
	assert.Equal(t, 135.0, got["total_fee"])
	assert.Equal(t, "****0199", got["applicant"].(map[string]any)["applicant_phone"])
}
