package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/wanhafiz/suara/internal/profile"
	"github.com/wanhafiz/suara/internal/reply"
)

// scriptClassifier returns pre-scripted decisions in order, one per turn.
type scriptClassifier struct {
	decisions []Decision
	calls     int
}

func (s *scriptClassifier) Classify(_ context.Context, _ string, _ Step) Decision {
	if s.calls >= len(s.decisions) {
		return ActionDecision{Action: ActionUnknown}
	}
	d := s.decisions[s.calls]
	s.calls++
	return d
}

// fakeProfiles serves fixed profile data without a database.
type fakeProfiles struct {
	lang string
	aid  profile.FinancialAid
}

func (f fakeProfiles) Profile(_ context.Context, ic string) profile.Profile {
	p := profile.DefaultProfile(ic)
	if f.lang != "" {
		p.PreferredLanguage = f.lang
	}
	return p
}

func (f fakeProfiles) Aid(_ context.Context, _ string) profile.FinancialAid {
	if f.aid == (profile.FinancialAid{}) {
		return profile.DefaultAid()
	}
	return f.aid
}

func newTestMachine(decisions ...Decision) (*Machine, *Store, *scriptClassifier) {
	classifier := &scriptClassifier{decisions: decisions}
	sessions := NewStore()
	m := NewMachine(classifier, sessions, fakeProfiles{}, reply.DefaultCatalog)
	return m, sessions, classifier
}

func TestProcessTurn_EmptyInputShortCircuits(t *testing.T) {
	t.Parallel()

	m, _, classifier := newTestMachine()
	for _, in := range []string{"", " ", "a"} {
		turn := m.ProcessTurn(context.Background(), "s1", "900101012345", in)
		if turn.Reply != reply.DefaultCatalog.Render(reply.KeyEmptyInput, reply.LangBM) {
			t.Errorf("ProcessTurn(%q) reply = %q, want empty-input prompt", in, turn.Reply)
		}
		if turn.ContinueConversation {
			t.Errorf("ProcessTurn(%q) should not continue conversation", in)
		}
	}
	if classifier.calls != 0 {
		t.Errorf("classifier invoked %d times for sub-minimum input", classifier.calls)
	}
}

func TestProcessTurn_UnknownActionAtIdle(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(ActionDecision{Action: ActionUnknown})
	turn := m.ProcessTurn(context.Background(), "s1", "900101012345", "cerita pasal cuaca")
	if !strings.Contains(turn.Reply, "STR dan MyKasih") {
		t.Errorf("reply = %q, want aid-topics-only message", turn.Reply)
	}
	if got := sessions.Get("s1").step(); got != StepIdle {
		t.Errorf("step = %v, want idle", got)
	}
}

func TestProcessTurn_AddRepHappyPath(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionInitiateAddRep},
		ICDecision{IC: "901122334455"},
		ConfirmDecision{Confirmed: true},
		AmountDecision{Amount: 200, Present: true},
	)
	ctx := context.Background()
	const sid = "s1"
	const ic = "900101012345"

	turn := m.ProcessTurn(ctx, sid, ic, "benarkan anak saya guna duit")
	if !turn.ContinueConversation {
		t.Fatal("add-rep turn should continue conversation")
	}
	if got := sessions.Get(sid).Step; got != StepAskIC {
		t.Fatalf("step = %v, want %v", got, StepAskIC)
	}

	turn = m.ProcessTurn(ctx, sid, ic, "901122334455")
	if want := "9 0 1 1 2 2 3 3 4 4 5 5"; !strings.Contains(turn.Reply, want) {
		t.Errorf("readback reply = %q, want digit-by-digit %q", turn.Reply, want)
	}
	if got := sessions.Get(sid).Step; got != StepConfirmIC {
		t.Fatalf("step = %v, want %v", got, StepConfirmIC)
	}

	turn = m.ProcessTurn(ctx, sid, ic, "ya betul")
	if got := sessions.Get(sid).Step; got != StepAskAmount {
		t.Fatalf("step = %v, want %v", got, StepAskAmount)
	}
	if !turn.ContinueConversation {
		t.Error("amount prompt should continue conversation")
	}

	turn = m.ProcessTurn(ctx, sid, ic, "dua ratus")
	if !strings.Contains(turn.Reply, "RM200") {
		t.Errorf("final reply = %q, want limit RM200 confirmation", turn.Reply)
	}
	if turn.ContinueConversation {
		t.Error("completed flow should end the conversation")
	}
	if got := sessions.Get(sid); got != (Session{}) {
		t.Errorf("session after completion = %+v, want fresh idle session", got)
	}
}

func TestProcessTurn_ICDenyLoopsBackWithoutReset(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionInitiateAddRep},
		ICDecision{IC: "901122334455"},
		ConfirmDecision{Confirmed: false},
		ICDecision{IC: "990101055555"},
	)
	ctx := context.Background()
	const sid = "s1"
	const ic = "900101012345"

	m.ProcessTurn(ctx, sid, ic, "tambah wakil")
	m.ProcessTurn(ctx, sid, ic, "901122334455")
	turn := m.ProcessTurn(ctx, sid, ic, "salah")
	if got := sessions.Get(sid).Step; got != StepAskIC {
		t.Fatalf("step after deny = %v, want %v", got, StepAskIC)
	}
	if !turn.ContinueConversation {
		t.Error("deny should keep the conversation open for a retry")
	}

	turn = m.ProcessTurn(ctx, sid, ic, "990101055555")
	if got := sessions.Get(sid).Step; got != StepConfirmIC {
		t.Errorf("step after re-dictation = %v, want %v", got, StepConfirmIC)
	}
	if !strings.Contains(turn.Reply, "9 9 0") {
		t.Errorf("readback reply = %q, want new number read back", turn.Reply)
	}
}

func TestProcessTurn_RepeatedICFailuresNeverReset(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionInitiateAddRep},
		ICDecision{}, ICDecision{}, ICDecision{},
	)
	ctx := context.Background()
	m.ProcessTurn(ctx, "s1", "900101012345", "tambah wakil")
	for i := 0; i < 3; i++ {
		turn := m.ProcessTurn(ctx, "s1", "900101012345", "tak dengar")
		if !turn.ContinueConversation {
			t.Fatalf("retry %d should keep the conversation open", i)
		}
		if got := sessions.Get("s1").Step; got != StepAskIC {
			t.Fatalf("retry %d step = %v, want %v", i, got, StepAskIC)
		}
	}
}

func TestProcessTurn_STRStatusOffersNavigation(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionCheckSTRStatus},
		ConfirmDecision{Confirmed: true},
	)
	ctx := context.Background()

	turn := m.ProcessTurn(ctx, "s1", "900101012345", "cek status str saya")
	if !strings.Contains(turn.Reply, "RM500") {
		t.Errorf("reply = %q, want eligible message with RM500", turn.Reply)
	}
	if !strings.Contains(turn.Reply, "halaman STR") {
		t.Errorf("reply = %q, want appended navigation question", turn.Reply)
	}
	sess := sessions.Get("s1")
	if sess.Step != StepAskNavigation || !sess.HasPending || sess.PendingPage != PageSTR {
		t.Fatalf("session = %+v, want pending navigation to str page", sess)
	}

	turn = m.ProcessTurn(ctx, "s1", "900101012345", "ya")
	if turn.NavigateTo != "/str" {
		t.Errorf("NavigateTo = %q, want /str", turn.NavigateTo)
	}
	if got := sessions.Get("s1"); got.Step != StepIdle || got.HasPending {
		t.Errorf("session after navigation = %+v, want idle with no pending page", got)
	}
}

func TestProcessTurn_NavigationDeclined(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionCheckMyKasihBalance},
		ConfirmDecision{Confirmed: false},
	)
	ctx := context.Background()

	turn := m.ProcessTurn(ctx, "s1", "900101012345", "berapa baki mykasih")
	if !strings.Contains(turn.Reply, "RM50") {
		t.Errorf("reply = %q, want balance RM50", turn.Reply)
	}

	turn = m.ProcessTurn(ctx, "s1", "900101012345", "tidak")
	if turn.NavigateTo != "" {
		t.Errorf("NavigateTo = %q, want empty on decline", turn.NavigateTo)
	}
	if turn.ContinueConversation {
		t.Error("declined navigation should end the conversation")
	}
	if got := sessions.Get("s1"); got.Step != StepIdle || got.HasPending {
		t.Errorf("session after decline = %+v, want idle with no pending page", got)
	}
}

func TestProcessTurn_STRPendingWhenNotEligible(t *testing.T) {
	t.Parallel()

	classifier := &scriptClassifier{decisions: []Decision{ActionDecision{Action: ActionCheckSTRStatus}}}
	sessions := NewStore()
	m := NewMachine(classifier, sessions, fakeProfiles{aid: profile.FinancialAid{STREligible: false, MyKasihBalance: 10}}, reply.DefaultCatalog)

	turn := m.ProcessTurn(context.Background(), "s1", "900101012345", "cek str")
	if !strings.Contains(turn.Reply, "dalam proses") {
		t.Errorf("reply = %q, want still-processing message", turn.Reply)
	}
}

func TestProcessTurn_AmountNotUnderstoodKeepsStep(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionInitiateAddRep},
		ICDecision{IC: "901122334455"},
		ConfirmDecision{Confirmed: true},
		AmountDecision{},
	)
	ctx := context.Background()
	m.ProcessTurn(ctx, "s1", "900101012345", "tambah wakil")
	m.ProcessTurn(ctx, "s1", "900101012345", "901122334455")
	m.ProcessTurn(ctx, "s1", "900101012345", "ya")

	turn := m.ProcessTurn(ctx, "s1", "900101012345", "entah")
	if turn.ContinueConversation {
		t.Error("not-understood amount reply should not continue")
	}
	if got := sessions.Get("s1").Step; got != StepAskAmount {
		t.Errorf("step = %v, want unchanged %v", got, StepAskAmount)
	}
}

func TestProcessTurn_LanguageFollowsProfile(t *testing.T) {
	t.Parallel()

	classifier := &scriptClassifier{decisions: []Decision{ActionDecision{Action: ActionGoHome}}}
	m := NewMachine(classifier, NewStore(), fakeProfiles{lang: "en"}, reply.DefaultCatalog)

	turn := m.ProcessTurn(context.Background(), "s1", "900101012345", "go home")
	if turn.Lang != reply.LangBI {
		t.Errorf("Lang = %v, want %v", turn.Lang, reply.LangBI)
	}
	if !strings.Contains(turn.Reply, "main page") {
		t.Errorf("reply = %q, want English rendering", turn.Reply)
	}
}

func TestProcessTurn_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(
		ActionDecision{Action: ActionInitiateAddRep},
		ActionDecision{Action: ActionUnknown},
	)
	ctx := context.Background()

	m.ProcessTurn(ctx, "s1", "900101012345", "tambah wakil")
	m.ProcessTurn(ctx, "s2", "900101012345", "cuaca hari ini")

	if got := sessions.Get("s1").Step; got != StepAskIC {
		t.Errorf("s1 step = %v, want %v", got, StepAskIC)
	}
	if got := sessions.Get("s2").step(); got != StepIdle {
		t.Errorf("s2 step = %v, want idle", got)
	}
}

func TestReset_Idempotent(t *testing.T) {
	t.Parallel()

	m, sessions, _ := newTestMachine(ActionDecision{Action: ActionInitiateAddRep})
	ctx := context.Background()
	m.ProcessTurn(ctx, "s1", "900101012345", "tambah wakil")

	m.Reset("s1")
	if got := sessions.Get("s1"); got != (Session{}) {
		t.Fatalf("session after reset = %+v, want fresh", got)
	}
	m.Reset("s1")
	m.Reset("never-seen")
	if got := sessions.Get("s1"); got != (Session{}) {
		t.Errorf("session after double reset = %+v, want fresh", got)
	}
}
