package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMatchesAuthRequiredIntent(t *testing.T) {
	it, confidence := Classify("I need my claim status please")

	assert.Equal(t, ClaimStatus, it)
	assert.Greater(t, confidence, 0.0)
	assert.True(t, RequiresAuthentication(it))
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	lower, confLower := Classify("what is my PENSION balance")
	upper, confUpper := Classify("WHAT IS MY pension BALANCE")

	assert.Equal(t, lower, upper)
	assert.Equal(t, confLower, confUpper)
	assert.Equal(t, PensionInquiry, lower)
}

func TestClassifyFallsBackToGeneral(t *testing.T) {
	it, confidence := Classify("the weather is lovely today")

	assert.Equal(t, General, it)
	assert.Equal(t, 0.0, confidence)
	assert.False(t, RequiresAuthentication(it))
}

func TestClassifyTieBreakUsesCatalogOrder(t *testing.T) {
	// One keyword hit for each of two intents with equal keyword-set sizes
	// would tie; the earlier catalog entry must win. "compliance status"
	// also contains "compliance", so compliance_status scores 2/3 while the
	// phrase alone cannot reach any other intent.
	it, _ := Classify("compliance status")
	assert.Equal(t, ComplianceStatus, it)

	// "my claim" hits claim_status only; "submit claim" hits claim_submission
	// only; both present picks the higher score, equal scores pick catalog order.
	it, _ = Classify("my claim submit claim")
	assert.Equal(t, ClaimStatus, it)
}

func TestClassifyConfidenceIsKeywordFraction(t *testing.T) {
	// claim_status has five keywords; two of them appear here.
	_, confidence := Classify("claim status update on my claim")
	assert.InDelta(t, 0.4, confidence, 0.0001)
}

func TestAuthRequiredCatalogIsClosed(t *testing.T) {
	authRequired := []Intent{
		ClaimStatus, PaymentStatus, PensionInquiry, AccountInfo,
		ContributionStatus, EmploymentInfo, EmployerServices,
		ComplianceStatus, EmployeeManagement, PaymentHistory,
		ClaimSubmission, DocumentStatus, TechnicalHelp,
	}
	for _, it := range authRequired {
		assert.True(t, RequiresAuthentication(it), "expected %s to require authentication", it)
	}

	for _, it := range []Intent{Greeting, OfficeInfo, General} {
		assert.False(t, RequiresAuthentication(it), "expected %s to be open", it)
	}
}

func TestAllListsCatalogIntents(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	assert.Contains(t, all, ClaimStatus)
	assert.Contains(t, all, OfficeInfo)
}

func TestCommandKeywords(t *testing.T) {
	assert.True(t, IsHelpCommand("help me with the format"))
	assert.True(t, IsHelpCommand("what do you need from me?"))
	assert.False(t, IsHelpCommand("123456/78/9 PEN-1234567"))

	assert.True(t, IsCancelCommand("cancel"))
	assert.True(t, IsCancelCommand("never mind, forget it"))
	assert.False(t, IsCancelCommand("check my claim"))

	assert.True(t, IsIntentChangeRequest("actually I want something else"))
	assert.True(t, IsIntentChangeRequest("can we switch to payments instead"))
	assert.False(t, IsIntentChangeRequest("what is my claim status"))
}
