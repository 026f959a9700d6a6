package intake

import "strings"

var affirmatives = []string{
	"yes", "y", "yeah", "yep", "confirm", "correct", "ok", "okay", "sure", "proceed", "go ahead",
}

var negatives = []string{
	"no", "n", "nope", "wrong", "incorrect", "restart", "start over", "redo", "change",
}

// parseYesNo classifies a confirmation answer. Negatives are checked first so
// phrases like "no that's wrong" don't read as affirmative.
func parseYesNo(s string) (yes bool, no bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, neg := range negatives {
		if t == neg || strings.HasPrefix(t, neg+" ") || strings.HasPrefix(t, neg+",") {
			return false, true
		}
	}
	for _, pos := range affirmatives {
		if t == pos || strings.HasPrefix(t, pos+" ") || strings.HasPrefix(t, pos+",") {
			return true, false
		}
	}
	return false, false
}
