package intent

import "strings"

// Classify scores a free-text message against every intent's keyword set and
// returns the best match with its confidence in [0,1]. Confidence is the
// fraction of an intent's keyword phrases present in the lower-cased message.
// Ties break by catalog order. A message matching nothing classifies as
// General with confidence 0.
func Classify(message string) (Intent, float64) {
	lowered := strings.ToLower(message)

	best := General
	bestScore := 0.0

	for _, def := range catalog {
		hits := 0
		for _, kw := range def.keywords {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(def.keywords))
		if score > bestScore {
			best = def.intent
			bestScore = score
		}
	}

	return best, bestScore
}
