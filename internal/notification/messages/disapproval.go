// Package messages renders the text sent to applicants.
package messages

import (
	"bytes"
	"strings"
	"text/template"
)

type DisapprovalData struct {
	ApplicantName     string
	ApplicationNumber string
	EventTitle        string
	EventDates        []string
	ParkName          string
	Reason            string
	AgencyName        string
	AgencyEmail       string
	AgencyPhone       string
}

type Rendered struct {
	Subject string
	Body    string
	SMSBody string
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

var (
	disapprovalSubject = template.Must(template.New("subject").Funcs(funcs).Parse(
		`Special use permit application {{.ApplicationNumber}} was not approved`))

	disapprovalBody = template.Must(template.New("body").Funcs(funcs).Parse(`Dear {{.ApplicantName}},

Thank you for applying for a special use permit{{if .ParkName}} at {{.ParkName}}{{end}}.

Unfortunately your application {{.ApplicationNumber}} for "{{.EventTitle}}"{{if .EventDates}} on {{join .EventDates ", "}}{{end}} was not approved.

Reason: {{.Reason}}

{{if .AgencyEmail}}If you have questions or would like to submit a revised application, contact us at {{.AgencyEmail}}{{if .AgencyPhone}} or {{.AgencyPhone}}{{end}}.
{{end}}
{{.AgencyName}}
`))

	disapprovalSMS = template.Must(template.New("sms").Funcs(funcs).Parse(
		`{{.AgencyName}}: permit application {{.ApplicationNumber}} was not approved. Reason: {{.Reason}}`))
)

// maxSMSLength keeps a disapproval text within a few SMS segments.
const maxSMSLength = 320

func Disapproval(data DisapprovalData) (Rendered, error) {
	var out Rendered
	for _, step := range []struct {
		tpl *template.Template
		dst *string
	}{
		{disapprovalSubject, &out.Subject},
		{disapprovalBody, &out.Body},
		{disapprovalSMS, &out.SMSBody},
	} {
		var buf bytes.Buffer
		if err := step.tpl.Execute(&buf, data); err != nil {
			return Rendered{}, err
		}
		*step.dst = buf.String()
	}

	if runes := []rune(out.SMSBody); len(runes) > maxSMSLength {
		out.SMSBody = string(runes[:maxSMSLength-3]) + "..."
	}
	return out, nil
}
