package intent

import "strings"

// Command keyword tables for the multi-turn conversation flow. These are
// explicit, testable tables rather than free-form NLP.

var helpKeywords = []string{"help", "how do i", "what format", "what do you need", "guidance"}

var cancelKeywords = []string{"cancel", "stop", "quit", "exit", "never mind", "nevermind"}

var intentChangeKeywords = []string{"instead", "something else", "different", "change topic", "actually i want", "switch to"}

// IsHelpCommand reports whether a message asks for guidance during an
// authentication challenge.
func IsHelpCommand(message string) bool {
	return matchesAny(message, helpKeywords)
}

// IsCancelCommand reports whether a message explicitly abandons the
// conversation.
func IsCancelCommand(message string) bool {
	return matchesAny(message, cancelKeywords)
}

// IsIntentChangeRequest reports whether an authenticated user is asking to
// switch to a different topic.
func IsIntentChangeRequest(message string) bool {
	return matchesAny(message, intentChangeKeywords)
}

func matchesAny(message string, keywords []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(message))
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
