// Package templates provides email template rendering for security alerts
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// EscalationAlertProps carries the fields rendered into the alert email.
type EscalationAlertProps struct {
	MaskedSessionID string
	Intent          string
	FailedAttempts  int
	LastOutcome     string
	OccurredAt      string
}

var escalationAlertTemplate = template.Must(template.New("escalationAlert").Parse(`
  <div style="font-family: Helvetica, sans-serif; font-size: 16px; color: #1a1a1a;">
    <h2 style="margin: 0 0 16px;">Verification failure threshold reached</h2>
    <p style="margin: 0 0 12px;">A conversation session has exceeded the allowed number of failed identity verification attempts.</p>
    <table role="presentation" border="0" cellpadding="6" cellspacing="0" style="border-collapse: collapse; font-size: 14px;">
      <tbody>
        <tr><td style="font-weight: bold;">Session</td><td>{{.MaskedSessionID}}</td></tr>
        <tr><td style="font-weight: bold;">Requested intent</td><td>{{.Intent}}</td></tr>
        <tr><td style="font-weight: bold;">Failed attempts</td><td>{{.FailedAttempts}}</td></tr>
        <tr><td style="font-weight: bold;">Last outcome</td><td>{{.LastOutcome}}</td></tr>
        <tr><td style="font-weight: bold;">Occurred at</td><td>{{.OccurredAt}}</td></tr>
      </tbody>
    </table>
    <p style="margin: 16px 0 0; color: #555555; font-size: 13px;">Credential values are never included in this alert. Review the authentication audit trail for the full event history.</p>
  </div>
`))

// GetEscalationAlertContent renders the escalation alert email body.
func GetEscalationAlertContent(props EscalationAlertProps) string {
	var buf bytes.Buffer
	if err := escalationAlertTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error rendering escalation alert template: %v", err)
		return ""
	}
	return buf.String()
}
