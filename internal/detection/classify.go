package detection

import "time"

// Classify evaluates required PPE against the items associated with one
// person. Types outside the model taxonomy are always non-compliant: absence
// of evidence is treated as absence when the model cannot look for the item.
func Classify(associated map[PPEType]Candidate, required []PPEType) ([]PPEStatus, OverallStatus) {
	now := time.Now().UTC()
	statuses := make([]PPEStatus, 0, len(required))

	for _, ppeType := range required {
		switch {
		case Unsupported(ppeType):
			statuses = append(statuses, PPEStatus{Type: ppeType, Status: StatusNonCompliant})
		case hasCandidate(associated, ppeType):
			ts := now
			statuses = append(statuses, PPEStatus{Type: ppeType, Status: StatusCompliant, LastDetected: &ts})
		default:
			statuses = append(statuses, PPEStatus{Type: ppeType, Status: StatusNonCompliant})
		}
	}

	return statuses, overallStatus(statuses)
}

func hasCandidate(associated map[PPEType]Candidate, t PPEType) bool {
	_, ok := associated[t]
	return ok
}

// overallStatus: compliant iff everything is compliant, nonCompliant iff
// nothing is. An empty required list is nonCompliant; compliance cannot be
// certified with no requirements defined.
func overallStatus(statuses []PPEStatus) OverallStatus {
	if len(statuses) == 0 {
		return OverallNonCompliant
	}

	compliant := 0
	for _, s := range statuses {
		if s.Status == StatusCompliant {
			compliant++
		}
	}

	switch compliant {
	case len(statuses):
		return OverallCompliant
	case 0:
		return OverallNonCompliant
	default:
		return OverallPartial
	}
}

// ViolationSeverity ranks a violation for persistence. The checks are
// ordered: head and foot protection always outrank the vest check.
func ViolationSeverity(missing []PPEType) Severity {
	for _, t := range missing {
		if t == PPEHardHat || t == PPESteelToedBoots {
			return SeverityCritical
		}
	}
	for _, t := range missing {
		if t == PPEVest {
			return SeverityHigh
		}
	}
	if len(missing) >= 2 {
		return SeverityMedium
	}
	return SeverityLow
}
