package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReferenceVerification(t *testing.T) {
	html, err := Render("reference_verification", map[string]interface{}{
		"ReferenceName": "Bob Ref",
		"ApplicantName": "Alice Archer",
		"RoleLabel":     "judge",
		"VerifyURL":     "http://localhost:8080/verify-reference?token=abc",
		"ExpiresAt":     "September 11, 2026",
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "Bob Ref"))
	assert.True(t, strings.Contains(html, "verify-reference?token=abc"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("no_such_template", nil)
	require.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	html, err := Render("application_status", map[string]interface{}{
		"Name":      "<script>alert(1)</script>",
		"RoleLabel": "judge",
		"Status":    "approved",
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}
