package dialog

import "context"

// Action identifies one entry of the idle-state action menu.
type Action string

const (
	ActionCheckSTRStatus     Action = "check_str_status"
	ActionCheckMyKasihBalance Action = "check_mykasih_balance"
	ActionApplySTR           Action = "apply_str"
	ActionCheckReminders     Action = "check_reminders"
	ActionGoHome             Action = "go_home"
	ActionOpenQR             Action = "open_qr"
	ActionInitiateAddRep     Action = "initiate_add_rep"
	ActionUnknown            Action = "unknown"
)

// Decision is the outcome of classifying one utterance. Exactly one concrete
// variant is produced per turn; the variant's type says which field is
// meaningful, so a consumer can never read a confirmation out of an
// action-selection turn or vice versa.
type Decision interface {
	isDecision()
}

// ActionDecision selects an action from the idle menu. Action is
// [ActionUnknown] when the utterance matched nothing.
type ActionDecision struct {
	Action Action
}

// ICDecision carries an extracted IC number. IC is empty when no usable
// number was heard.
type ICDecision struct {
	IC string
}

// ConfirmDecision answers a yes/no question. Confirmed is false both for an
// explicit "no" and for an utterance that answered neither way; the machine
// treats both as a decline.
type ConfirmDecision struct {
	Confirmed bool
}

// AmountDecision carries a spending-limit amount. Present is false when no
// number was heard.
type AmountDecision struct {
	Amount  float64
	Present bool
}

func (ActionDecision) isDecision()  {}
func (ICDecision) isDecision()      {}
func (ConfirmDecision) isDecision() {}
func (AmountDecision) isDecision()  {}

// Classifier turns one utterance into a [Decision] for the given dialogue
// step. Implementations must not fail the turn: when classification is
// impossible they return the zero-value variant for the step.
type Classifier interface {
	Classify(ctx context.Context, text string, step Step) Decision
}
