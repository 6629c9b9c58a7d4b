package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Inline templates keep the deployment self-contained; there is no
// user-editable template directory.
var templates = template.Must(template.New("email").Parse(`
{{define "reference_verification"}}
<p>Hello {{.ReferenceName}},</p>
<p>{{.ApplicantName}} has listed you as a reference on their {{.RoleLabel}}
application. Please confirm their suitability by following the link below.</p>
<p><a href="{{.VerifyURL}}">Verify reference</a></p>
<p>This link is single-use and expires on {{.ExpiresAt}}.</p>
{{end}}

{{define "application_status"}}
<p>Hello {{.Name}},</p>
<p>Your {{.RoleLabel}} application has been <b>{{.Status}}</b>.</p>
{{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}
{{end}}

{{define "assignment_new"}}
<p>Hello {{.Name}},</p>
<p>You have been requested for <b>{{.EventTitle}}</b> on {{.EventDate}} as {{.RoleLabel}}.</p>
<p>Please log in to accept or decline.</p>
{{end}}

{{define "assignment_response"}}
<p>{{.Name}} has <b>{{.Status}}</b> the {{.RoleLabel}} assignment for {{.EventTitle}}.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
{{end}}

{{define "assignment_updated"}}
<p>Hello {{.Name}},</p>
<p>Your assignment for <b>{{.EventTitle}}</b> is now <b>{{.Status}}</b>.</p>
{{end}}

{{define "assignment_cancelled"}}
<p>Hello {{.Name}},</p>
<p>Your assignment for <b>{{.EventTitle}}</b> has been cancelled.</p>
{{end}}
`))

// Render executes a named template against data.
func Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return buf.String(), nil
}
