// Package dialog implements the voice-navigation conversation core: the
// per-session state record, the dialogue state machine that advances it on
// every turn, and the navigation-page mapping consumed by the frontend.
package dialog

// Step is the position of a conversation inside the dialogue state machine.
type Step string

const (
	// StepIdle is the resting state; the next utterance selects an action.
	StepIdle Step = "IDLE"

	// StepAskIC waits for the dependent's IC number.
	StepAskIC Step = "ASK_IC"

	// StepConfirmIC waits for a yes/no on the read-back IC number.
	StepConfirmIC Step = "CONFIRM_IC"

	// StepAskAmount waits for the spending-limit amount.
	StepAskAmount Step = "ASK_AMOUNT"

	// StepAskNavigation waits for a yes/no on a pending page navigation.
	StepAskNavigation Step = "ASK_NAVIGATION"
)

// IsValid reports whether s is a recognised dialogue step.
func (s Step) IsValid() bool {
	switch s {
	case StepIdle, StepAskIC, StepConfirmIC, StepAskAmount, StepAskNavigation:
		return true
	}
	return false
}

// ExpectsConfirmation reports whether s is answered with a yes/no. Classifiers
// check confirmation keywords before topic keywords on these steps so that a
// topic word inside a longer answer cannot override the expected yes/no.
func (s Step) ExpectsConfirmation() bool {
	switch s {
	case StepConfirmIC, StepAskNavigation, StepAskAmount:
		return true
	}
	return false
}
