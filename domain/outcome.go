package domain

type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Outcome is the result of a best-effort collaborator call. Callers always proceed;
// a non-ok status only changes which fallback they use.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

func Ok() Outcome {
	return Outcome{Status: OutcomeOK}
}

func Degraded(reason string) Outcome {
	return Outcome{Status: OutcomeDegraded, Reason: reason}
}

func Failed(reason string) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason}
}

func (o Outcome) IsOK() bool {
	return o.Status == OutcomeOK
}
