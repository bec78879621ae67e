package internal

// AdvisoryLevel is the four-level advisory signal, ordered by severity.
type AdvisoryLevel int

const (
	LevelGreen AdvisoryLevel = iota
	LevelInfo
	LevelYellow
	LevelRed
)

func (l AdvisoryLevel) String() string {
	switch l {
	case LevelRed:
		return "RED"
	case LevelYellow:
		return "YELLOW"
	case LevelInfo:
		return "INFO"
	default:
		return "GREEN"
	}
}

// Confidence is a coarse trust label over an advisory, derived from whether
// either upstream service errored during the run.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Advisory is the engine's terminal output for one winning classification
// run. It is advisory only and computes no legal certainty.
type Advisory struct {
	Level      AdvisoryLevel
	Title      string
	Detail     string
	ZoneName   string
	Confidence Confidence
	// Note names partially unreachable services, when any.
	Note string
}

// deriveConfidence maps per-service error presence onto the trust label:
// high when neither service errored anywhere in the run, low when both did,
// medium when exactly one did.
func deriveConfidence(aviationErred, protectedErred bool) Confidence {
	switch {
	case aviationErred && protectedErred:
		return ConfidenceLow
	case aviationErred || protectedErred:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// unreachableNote spells out which services were unreachable during a run.
func unreachableNote(aviationErred, protectedErred bool) string {
	switch {
	case aviationErred && protectedErred:
		return "Aviation and protected-area services were partially unreachable."
	case aviationErred:
		return "Aviation service was partially unreachable."
	case protectedErred:
		return "Protected-area service was partially unreachable."
	default:
		return ""
	}
}
