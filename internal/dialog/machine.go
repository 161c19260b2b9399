package dialog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wanhafiz/suara/internal/profile"
	"github.com/wanhafiz/suara/internal/reply"
)

// minUtteranceLen is the shortest trimmed utterance worth classifying.
// Anything shorter is treated as silence.
const minUtteranceLen = 2

// Turn is the outcome of one processed utterance.
type Turn struct {
	// Reply is the text to speak back to the user.
	Reply string

	// Lang is the display language the reply was rendered in.
	Lang reply.Language

	// ContinueConversation is true when the reply is a question and the
	// client should keep listening for the answer.
	ContinueConversation bool

	// NavigateTo is the frontend route to open, or empty when the turn does
	// not navigate.
	NavigateTo string
}

// Machine is the dialogue state machine. It owns no session state itself;
// every turn reads and writes the injected session store, so concurrent
// conversations never share a record.
type Machine struct {
	classifier Classifier
	sessions   *Store
	profiles   profile.Store
	catalog    *reply.Catalog
	log        *slog.Logger
}

// Option configures a [Machine].
type Option func(*Machine)

// WithLogger sets the machine's logger. The default discards nothing and
// writes through [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// NewMachine wires a dialogue state machine from its collaborators.
func NewMachine(classifier Classifier, sessions *Store, profiles profile.Store, catalog *reply.Catalog, opts ...Option) *Machine {
	m := &Machine{
		classifier: classifier,
		sessions:   sessions,
		profiles:   profiles,
		catalog:    catalog,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessTurn advances the conversation identified by sessionID with one
// cleaned utterance and returns the resulting reply. userIC selects the
// profile whose language preference and aid records the turn uses.
func (m *Machine) ProcessTurn(ctx context.Context, sessionID, userIC, text string) Turn {
	lang := reply.ResolveLanguage(m.profiles.Profile(ctx, userIC).PreferredLanguage)

	text = strings.TrimSpace(text)
	if len([]rune(text)) < minUtteranceLen {
		return Turn{Reply: m.catalog.Render(reply.KeyEmptyInput, lang), Lang: lang}
	}

	sess := m.sessions.Get(sessionID)
	step := sess.step()
	decision := m.classifier.Classify(ctx, text, step)
	m.log.Debug("utterance classified",
		slog.String("session_id", sessionID),
		slog.String("step", string(step)),
		slog.String("decision", decisionKind(decision)))

	switch step {
	case StepIdle:
		return m.handleIdle(ctx, sessionID, sess, decision, userIC, lang)
	case StepAskIC:
		return m.handleAskIC(sessionID, sess, decision, lang)
	case StepConfirmIC:
		return m.handleConfirmIC(sessionID, sess, decision, lang)
	case StepAskAmount:
		return m.handleAskAmount(sessionID, decision, lang)
	case StepAskNavigation:
		return m.handleAskNavigation(sessionID, sess, decision, lang)
	}

	// Unreachable for valid sessions; a corrupted step degrades to a reset.
	m.sessions.Reset(sessionID)
	return Turn{Reply: m.catalog.Render(reply.KeyNotUnderstood, lang), Lang: lang}
}

// Reset returns the conversation identified by sessionID to the idle state.
// Resetting an unknown session is a no-op.
func (m *Machine) Reset(sessionID string) {
	m.sessions.Reset(sessionID)
}

func (m *Machine) handleIdle(ctx context.Context, sessionID string, sess Session, decision Decision, userIC string, lang reply.Language) Turn {
	action := ActionUnknown
	if d, ok := decision.(ActionDecision); ok && d.Action != "" {
		action = d.Action
	}

	switch action {
	case ActionInitiateAddRep:
		sess.Step = StepAskIC
		sess.LastAction = action
		m.sessions.Put(sessionID, sess)
		return Turn{
			Reply:                m.catalog.Render(reply.KeyAskIC, lang),
			Lang:                 lang,
			ContinueConversation: true,
		}

	case ActionCheckSTRStatus:
		aid := m.profiles.Aid(ctx, userIC)
		var base string
		if aid.STREligible {
			base = m.catalog.Render(reply.KeySTRApproved, lang, aid.STRNextPayAmount)
		} else {
			base = m.catalog.Render(reply.KeySTRPending, lang)
		}
		return m.offerNavigation(sessionID, sess, action, base, lang)

	case ActionCheckMyKasihBalance:
		aid := m.profiles.Aid(ctx, userIC)
		base := m.catalog.Render(reply.KeyMyKasihBalance, lang, aid.MyKasihBalance)
		return m.offerNavigation(sessionID, sess, action, base, lang)

	case ActionApplySTR:
		return m.offerNavigation(sessionID, sess, action, m.catalog.Render(reply.KeyApplySTR, lang), lang)

	case ActionCheckReminders:
		return m.offerNavigation(sessionID, sess, action, m.catalog.Render(reply.KeyCheckReminders, lang), lang)

	case ActionOpenQR:
		return m.offerNavigation(sessionID, sess, action, m.catalog.Render(reply.KeyOpenQR, lang), lang)

	case ActionGoHome:
		return m.offerNavigation(sessionID, sess, action, m.catalog.Render(reply.KeyGoHome, lang), lang)
	}

	return Turn{Reply: m.catalog.Render(reply.KeyOnlyAidTopics, lang), Lang: lang}
}

// offerNavigation appends a "go to page X?" question to base and moves the
// session to [StepAskNavigation]. Actions without a page keep the base reply
// and end the turn.
func (m *Machine) offerNavigation(sessionID string, sess Session, action Action, base string, lang reply.Language) Turn {
	sess.LastAction = action
	page, ok := actionPage(action)
	if !ok {
		m.sessions.Put(sessionID, sess)
		return Turn{Reply: base, Lang: lang}
	}

	sess.Step = StepAskNavigation
	sess.PendingPage = page
	sess.HasPending = true
	m.sessions.Put(sessionID, sess)

	ask := m.catalog.Render(reply.KeyNavAsk, lang, PageName(page, lang))
	return Turn{
		Reply:                base + " " + ask,
		Lang:                 lang,
		ContinueConversation: true,
	}
}

func (m *Machine) handleAskIC(sessionID string, sess Session, decision Decision, lang reply.Language) Turn {
	d, ok := decision.(ICDecision)
	if !ok || d.IC == "" {
		return Turn{
			Reply:                m.catalog.Render(reply.KeyRepeatIC, lang),
			Lang:                 lang,
			ContinueConversation: true,
		}
	}

	sess.TempIC = d.IC
	sess.Step = StepConfirmIC
	m.sessions.Put(sessionID, sess)
	return Turn{
		Reply:                m.catalog.Render(reply.KeyConfirmIC, lang, spacedDigits(d.IC)),
		Lang:                 lang,
		ContinueConversation: true,
	}
}

func (m *Machine) handleConfirmIC(sessionID string, sess Session, decision Decision, lang reply.Language) Turn {
	if d, ok := decision.(ConfirmDecision); ok && d.Confirmed {
		sess.Step = StepAskAmount
		m.sessions.Put(sessionID, sess)
		return Turn{
			Reply:                m.catalog.Render(reply.KeyAskAmount, lang),
			Lang:                 lang,
			ContinueConversation: true,
		}
	}

	// Anything but a clear yes sends the user back to re-dictate the number.
	sess.Step = StepAskIC
	m.sessions.Put(sessionID, sess)
	return Turn{
		Reply:                m.catalog.Render(reply.KeyRepeatNumber, lang),
		Lang:                 lang,
		ContinueConversation: true,
	}
}

func (m *Machine) handleAskAmount(sessionID string, decision Decision, lang reply.Language) Turn {
	if d, ok := decision.(AmountDecision); ok && d.Present {
		m.sessions.Reset(sessionID)
		return Turn{
			Reply: m.catalog.Render(reply.KeyAmountSet, lang, d.Amount),
			Lang:  lang,
		}
	}
	// The session stays at the amount step so the user can try again.
	return Turn{Reply: m.catalog.Render(reply.KeyNotUnderstood, lang), Lang: lang}
}

func (m *Machine) handleAskNavigation(sessionID string, sess Session, decision Decision, lang reply.Language) Turn {
	page := sess.PendingPage
	hasPending := sess.HasPending
	sess.Step = StepIdle
	sess.PendingPage = ""
	sess.HasPending = false
	m.sessions.Put(sessionID, sess)

	confirmed := false
	if d, ok := decision.(ConfirmDecision); ok {
		confirmed = d.Confirmed
	}
	if !confirmed || !hasPending {
		return Turn{Reply: m.catalog.Render(reply.KeyNavCancelled, lang), Lang: lang}
	}

	route, ok := RouteFor(page)
	if !ok {
		route = "/"
	}
	return Turn{
		Reply:      m.catalog.Render(reply.KeyNavOpening, lang, PageName(page, lang)),
		Lang:       lang,
		NavigateTo: route,
	}
}

// spacedDigits rewrites an IC number for digit-by-digit readback.
func spacedDigits(ic string) string {
	runes := []rune(ic)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// decisionKind names the concrete decision variant for log output.
func decisionKind(d Decision) string {
	switch d.(type) {
	case ActionDecision:
		return "action"
	case ICDecision:
		return "ic"
	case ConfirmDecision:
		return "confirm"
	case AmountDecision:
		return "amount"
	default:
		return "none"
	}
}
