package window

import "fmt"

// Decision is the outcome of the fallback policy for one fetched batch.
type Decision struct {
	// Preserve means the existing window must be kept untouched.
	Preserve bool
	// NoData means nothing was fetched and nothing is held anywhere.
	NoData bool
	// Reason is a human-readable explanation; it never affects control flow.
	Reason string
}

// ShouldPreserve decides whether a freshly fetched batch can be trusted.
//
// An empty parse is ambiguous between "no sources worked" and "sources worked
// and truthfully returned nothing". The policy accepts that ambiguity and
// always protects prior state on an empty parse, favoring availability over
// freshness: a total source failure must not blank the display.
//
// Pure function: deterministic given its three inputs; sourceCount feeds only
// the explanation, never the decision.
func ShouldPreserve(parsedCount, existingCount, sourceCount int) Decision {
	if parsedCount == 0 && existingCount > 0 {
		return Decision{
			Preserve: true,
			Reason:   fmt.Sprintf("no events parsed from %d source(s); preserving existing window of %d", sourceCount, existingCount),
		}
	}
	if parsedCount == 0 {
		return Decision{
			NoData: true,
			Reason: fmt.Sprintf("no events parsed from %d source(s) and no existing window", sourceCount),
		}
	}
	return Decision{
		Reason: fmt.Sprintf("%d parsed event(s); replacing window of %d", parsedCount, existingCount),
	}
}
