// Package intent provides keyword-based intent classification for inbound
// chat messages, plus the command keyword tables used by the conversation
// flow. Classification is deliberately simple and side-effect-free.
package intent

// Intent identifies a discrete user goal.
type Intent string

const (
	ClaimStatus        Intent = "claim_status"
	PaymentStatus      Intent = "payment_status"
	PensionInquiry     Intent = "pension_inquiry"
	AccountInfo        Intent = "account_info"
	ContributionStatus Intent = "contribution_status"
	EmploymentInfo     Intent = "employment_info"
	EmployerServices   Intent = "employer_services"
	ComplianceStatus   Intent = "compliance_status"
	EmployeeManagement Intent = "employee_management"
	PaymentHistory     Intent = "payment_history"
	ClaimSubmission    Intent = "claim_submission"
	DocumentStatus     Intent = "document_status"
	TechnicalHelp      Intent = "technical_help"
	Greeting           Intent = "greeting"
	OfficeInfo         Intent = "office_info"
	General            Intent = "general"
)

// definition pairs an intent with its keyword phrases and whether answering
// it requires a verified identity.
type definition struct {
	intent       Intent
	keywords     []string
	requiresAuth bool
	label        string
}

// catalog order is the tie-break priority: earlier wins on equal confidence.
var catalog = []definition{
	{ClaimStatus, []string{"claim status", "my claim", "claim progress", "check claim", "claim update"}, true, "claim status"},
	{PaymentStatus, []string{"payment status", "my payment", "benefit payment", "payment due", "when will i be paid"}, true, "payment status"},
	{PensionInquiry, []string{"pension", "retirement", "pension balance", "pension statement"}, true, "pension inquiry"},
	{AccountInfo, []string{"account info", "my account", "account details", "update my details", "personal details"}, true, "account information"},
	{ContributionStatus, []string{"contribution", "contributions", "contribution status", "my contributions"}, true, "contribution status"},
	{EmploymentInfo, []string{"employment info", "employment history", "my employer", "employment record"}, true, "employment information"},
	{EmployerServices, []string{"employer services", "register employees", "employer portal", "employer account"}, true, "employer services"},
	{ComplianceStatus, []string{"compliance", "compliance status", "compliance certificate"}, true, "compliance status"},
	{EmployeeManagement, []string{"employee management", "manage employees", "add employee", "remove employee"}, true, "employee management"},
	{PaymentHistory, []string{"payment history", "past payments", "previous payments", "payment record"}, true, "payment history"},
	{ClaimSubmission, []string{"submit claim", "new claim", "file a claim", "lodge a claim", "make a claim"}, true, "claim submission"},
	{DocumentStatus, []string{"document status", "my documents", "document upload", "uploaded documents"}, true, "document status"},
	{TechnicalHelp, []string{"technical help", "cannot log in", "can't log in", "website problem", "reset password", "technical issue"}, true, "technical help"},
	{Greeting, []string{"hello", "hi there", "good morning", "good afternoon", "good evening"}, false, "greeting"},
	{OfficeInfo, []string{"office hours", "opening hours", "office location", "nearest office", "contact number"}, false, "office information"},
}

// RequiresAuthentication reports whether an intent is gated behind identity
// verification. Unknown intents (including General) never trigger the gate.
func RequiresAuthentication(it Intent) bool {
	for _, def := range catalog {
		if def.intent == it {
			return def.requiresAuth
		}
	}
	return false
}

// Label returns the human-readable description used in challenge prompts.
func Label(it Intent) string {
	for _, def := range catalog {
		if def.intent == it {
			return def.label
		}
	}
	return "general assistance"
}

// All returns every intent in priority order.
func All() []Intent {
	out := make([]Intent, 0, len(catalog)+1)
	for _, def := range catalog {
		out = append(out, def.intent)
	}
	return append(out, General)
}
