package service

import "fmt"

// AdvanceOutcome is the result of a stage progression attempt. The state
// machine works purely in these tagged values; Directive renders them as
// the natural-language system note the agent orchestrator consumes. The
// orchestrator treats tool return values as conversational context, so
// the strings are phrased as instructions, not protocol.
type AdvanceOutcome struct {
	kind      outcomeKind
	FromStage int
	NewStage  int
	// Rejected only
	AssertedStage int
	CurrentStage  int
}

type outcomeKind int

const (
	outcomeAdvanced outcomeKind = iota
	outcomeRejected
	outcomeResumptionBlocked
)

func Advanced(from, to int) AdvanceOutcome {
	return AdvanceOutcome{kind: outcomeAdvanced, FromStage: from, NewStage: to}
}

func Rejected(asserted, current int) AdvanceOutcome {
	return AdvanceOutcome{kind: outcomeRejected, AssertedStage: asserted, CurrentStage: current}
}

func ResumptionBlocked() AdvanceOutcome {
	return AdvanceOutcome{kind: outcomeResumptionBlocked}
}

func (o AdvanceOutcome) IsAdvanced() bool          { return o.kind == outcomeAdvanced }
func (o AdvanceOutcome) IsRejected() bool          { return o.kind == outcomeRejected }
func (o AdvanceOutcome) IsResumptionBlocked() bool { return o.kind == outcomeResumptionBlocked }

// Directive renders the outcome for the orchestrator.
func (o AdvanceOutcome) Directive() string {
	switch o.kind {
	case outcomeAdvanced:
		return fmt.Sprintf(
			"SYSTEM_NOTE: Stage %d advanced to %d. ROUTER ACTION REQUIRED: Immediately Transfer to the Stage %d agent and force them to introduce themselves. Do not wait for user input.",
			o.FromStage, o.NewStage, o.NewStage,
		)
	case outcomeRejected:
		return fmt.Sprintf(
			"SYSTEM_NOTE: You are attempting to complete Stage %d, but the project is already at Stage %d. Please wait for the user instructions or just say 'I am ready when you are'.",
			o.AssertedStage, o.CurrentStage,
		)
	default:
		return "SYSTEM_NOTE: Resumption in progress. Please ignore any previous completion signals from history. Introduce yourself to the user and wait for their input before completing this stage."
	}
}
