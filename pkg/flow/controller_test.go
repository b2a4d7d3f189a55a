package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/events"
	"relatescore-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapRegistry is a minimal InviteRegistry for controller tests.
type mapRegistry struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMapRegistry() *mapRegistry {
	return &mapRegistry{codes: map[string]string{}}
}

func (r *mapRegistry) Issue(_ context.Context, code, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code]; ok {
		return ErrInviteCodeTaken
	}
	r.codes[code] = sessionID
	return nil
}

func (r *mapRegistry) Claim(_ context.Context, code, _ string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.codes[code]
	if ok {
		delete(r.codes, code)
	}
	return owner, ok, nil
}

func (r *mapRegistry) Revoke(_ context.Context, code, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes[code] == sessionID {
		delete(r.codes, code)
	}
	return nil
}

func (r *mapRegistry) Owner(_ context.Context, code string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.codes[code]
	return owner, ok, nil
}

func (r *mapRegistry) Any(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes) > 0, nil
}

type halfRandom struct{}

func (halfRandom) Float64() float64 { return 0.5 }

var testNow = time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)

func fixedCodes(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func newTestController(reg InviteRegistry, gate assessment.ModerationGate, codes ...string) *Controller {
	if len(codes) == 0 {
		codes = []string{"AB12CD34"}
	}
	engine := assessment.NewEngine(assessment.DefaultQuestionBank(), halfRandom{})
	return NewController(engine, gate, reg,
		WithCodeGenerator(fixedCodes(codes...)),
		WithClock(func() time.Time { return testNow }),
	)
}

func sessionAt(screen store.Screen) *store.Session {
	s := store.NewSession("session-1", testNow)
	s.Screen = screen
	return s
}

func allRatings(bank *assessment.QuestionBank, battery assessment.Battery, value int) assessment.Ratings {
	r := assessment.Ratings{}
	for _, q := range bank.Questions(battery) {
		r[q.Key] = value
	}
	return r
}

func apply(t *testing.T, c *Controller, s *store.Session, a Action) *Outcome {
	t.Helper()
	out, err := c.Apply(context.Background(), s, a)
	require.NoError(t, err)
	return out
}

func eventTypes(evts []events.Event) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.EventType())
	}
	return out
}

func TestTransitionTableIsClosed(t *testing.T) {
	for _, screen := range store.Screens {
		_, ok := transitions[screen]
		assert.True(t, ok, "screen %s has no transition row", screen)
		for target := range transitions[screen] {
			_, known := ParseScreen(string(target))
			assert.True(t, known, "%s -> %s targets an unknown screen", screen, target)
		}
	}
	assert.Len(t, transitions, len(store.Screens))
}

func TestInviteRoundTrip(t *testing.T) {
	reg := newMapRegistry()
	c := newTestController(reg, nil)

	issuer := store.NewSession("issuer", testNow)
	for _, to := range []store.Screen{store.ScreenLogIn, store.ScreenHome, store.ScreenCreateInvite} {
		out := apply(t, c, issuer, Navigate(string(to)))
		issuer = out.Session
		require.Equal(t, to, issuer.Screen)
		require.Nil(t, issuer.Notice)
	}
	assert.True(t, issuer.Authenticated)
	assert.Equal(t, "AB12CD34", issuer.InviteCode)

	// Revisiting keeps the same active code.
	issuer = apply(t, c, issuer, Navigate(string(store.ScreenHome))).Session
	out := apply(t, c, issuer, Navigate(string(store.ScreenCreateInvite)))
	assert.Equal(t, "AB12CD34", out.Session.InviteCode)
	assert.Empty(t, out.Events)

	partner := store.NewSession("partner", testNow)
	partner = apply(t, c, partner, Navigate(string(store.ScreenPartnerEntry))).Session
	require.Nil(t, partner.Notice)

	out = apply(t, c, partner, Action{Type: ActionSubmitPartnerCode, Code: "AB12CD35"})
	assert.Equal(t, store.ScreenPartnerEntry, out.Session.Screen)
	require.NotNil(t, out.Session.Notice)
	assert.Equal(t, CodeInviteMismatch, out.Session.Notice.Code)
	owner, ok, _ := reg.Owner(context.Background(), "AB12CD34")
	assert.True(t, ok, "a mismatch never consumes the real code")
	assert.Equal(t, "issuer", owner)

	out = apply(t, c, out.Session, Action{Type: ActionSubmitPartnerCode, Code: " ab12cd34 "})
	partner = out.Session
	assert.Equal(t, store.ScreenInviteAccepted, partner.Screen)
	assert.True(t, partner.PartnerAccepted)
	assert.Equal(t, "AB12CD34", partner.PartnerCode)
	assert.Equal(t, "issuer", partner.InvitedBy)
	assert.Equal(t, []string{events.TypeInviteAccepted}, eventTypes(out.Events))
	assert.Equal(t, "issuer", out.Events[0].Payload()["issuer_session_id"])
	assert.NotContains(t, out.Events[0].Payload(), "invite_code")

	// Single use.
	other := sessionAt(store.ScreenPartnerEntry)
	require.NoError(t, reg.Issue(context.Background(), "ZZZZZZZZ", "someone"))
	out = apply(t, c, other, Action{Type: ActionSubmitPartnerCode, Code: "AB12CD34"})
	assert.Equal(t, CodeInviteMismatch, out.Session.Notice.Code)

	// The issuer gets a fresh code once the old one is consumed.
	c.codes = fixedCodes("NEWCODE1")
	require.Equal(t, store.ScreenHome, issuer.Screen)
	out = apply(t, c, issuer, Navigate(string(store.ScreenCreateInvite)))
	issuer = out.Session
	require.Equal(t, store.ScreenCreateInvite, issuer.Screen)
	assert.Nil(t, issuer.Notice)
	assert.Equal(t, "NEWCODE1", issuer.InviteCode)
	assert.Equal(t, []string{events.TypeInviteIssued}, eventTypes(out.Events))
	assert.NotContains(t, out.Events[0].Payload(), "invite_code")
}

func TestIssueRetriesOnCollision(t *testing.T) {
	reg := newMapRegistry()
	require.NoError(t, reg.Issue(context.Background(), "TAKEN123", "other"))
	c := newTestController(reg, nil, "TAKEN123", "FREE0001")

	s := sessionAt(store.ScreenHome)
	s.Authenticated = true
	out := apply(t, c, s, Navigate(string(store.ScreenCreateInvite)))
	assert.Equal(t, "FREE0001", out.Session.InviteCode)
	assert.Equal(t, []string{events.TypeInviteIssued}, eventTypes(out.Events))
}

func TestPartnerEntryWithoutActiveInvite(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)

	out := apply(t, c, store.NewSession("p", testNow), Navigate(string(store.ScreenPartnerEntry)))
	s := out.Session
	assert.Equal(t, store.ScreenPartnerEntry, s.Screen)
	require.NotNil(t, s.Notice)
	assert.Equal(t, store.NoticeInfo, s.Notice.Kind)
	assert.Equal(t, CodeNoActiveInvite, s.Notice.Code)

	allowed, err := c.Allowed(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []store.Screen{store.ScreenEntry}, allowed)

	out = apply(t, c, s, Action{Type: ActionSubmitPartnerCode, Code: "AB12CD34"})
	assert.Equal(t, CodeNoActiveInvite, out.Session.Notice.Code)
	assert.Empty(t, out.Session.PartnerCode)

	out = apply(t, c, s, Navigate(string(store.ScreenEntry)))
	assert.Equal(t, store.ScreenEntry, out.Session.Screen)
	assert.Nil(t, out.Session.Notice)
}

func TestNavigationErrors(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	bank := c.Bank()

	s := sessionAt(store.ScreenPreview)
	s.Calibration = allRatings(bank, assessment.BatteryCalibration, 4)
	s.UseMutual = true

	for _, to := range []string{"settings", "", string(store.ScreenDashboard)} {
		t.Run(to, func(t *testing.T) {
			out := apply(t, c, s, Navigate(to))
			assert.Equal(t, store.ScreenEntry, out.Session.Screen)
			require.NotNil(t, out.Session.Notice)
			assert.Equal(t, CodeNavigationError, out.Session.Notice.Code)
			assert.Equal(t, s.Calibration, out.Session.Calibration)
			assert.True(t, out.Session.UseMutual)
		})
	}
}

func TestNavigateToCurrentScreenStays(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	bank := c.Bank()

	s := sessionAt(store.ScreenAssessment)
	s.PartnerAccepted = true
	s.Calibration = allRatings(bank, assessment.BatteryCalibration, 4)
	s.Assessment = allRatings(bank, assessment.BatteryAssessment, 3)

	out := apply(t, c, s, Navigate(string(store.ScreenAssessment)))
	assert.Equal(t, store.ScreenAssessment, out.Session.Screen)
	assert.Nil(t, out.Session.Notice)
	assert.Equal(t, s.Assessment, out.Session.Assessment)
	assert.Empty(t, out.Events)

	// A blocked page still reports its blocker.
	home := sessionAt(store.ScreenHome)
	out = apply(t, c, home, Navigate(string(store.ScreenHome)))
	assert.Equal(t, store.ScreenHome, out.Session.Screen)
	require.NotNil(t, out.Session.Notice)
	assert.Equal(t, CodeLoginRequired, out.Session.Notice.Code)
}

func TestCreateProfileRequiresConsent(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	s := apply(t, c, store.NewSession("s", testNow), Navigate(string(store.ScreenCreateProfile))).Session

	out := apply(t, c, s, Navigate(string(store.ScreenHome)))
	assert.Equal(t, store.ScreenCreateProfile, out.Session.Screen)
	assert.Equal(t, CodeConsentRequired, out.Session.Notice.Code)
	assert.False(t, out.Session.Authenticated)

	s = apply(t, c, s, SetFlag(ActionSetConsent, true)).Session
	assert.True(t, s.ConsentAccepted)

	out = apply(t, c, s, Navigate(string(store.ScreenHome)))
	assert.Equal(t, store.ScreenHome, out.Session.Screen)
	assert.True(t, out.Session.Authenticated)
	assert.Nil(t, out.Session.Notice)
}

func TestHomeRequiresAuthentication(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	s := sessionAt(store.ScreenHome)

	blocked, err := c.Blocker(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, blocked)
	assert.Equal(t, store.NoticeWarning, blocked.Kind)
	assert.Equal(t, store.ScreenEntry, blocked.Recovery)

	out := apply(t, c, s, Navigate(string(store.ScreenCreateInvite)))
	assert.Equal(t, store.ScreenHome, out.Session.Screen)
	assert.Equal(t, CodeLoginRequired, out.Session.Notice.Code)
	assert.Empty(t, out.Session.InviteCode)

	out = apply(t, c, s, Navigate(string(store.ScreenEntry)))
	assert.Equal(t, store.ScreenEntry, out.Session.Screen)
}

func TestDashboardRequiresResults(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	s := sessionAt(store.ScreenDashboard)

	out := apply(t, c, s, Action{Type: ActionSaveReflection, Text: "hello"})
	require.NotNil(t, out.Session.Notice)
	assert.Equal(t, CodeResultsRequired, out.Session.Notice.Code)
	assert.Equal(t, store.ScreenAssessment, out.Session.Notice.Recovery)
	assert.Empty(t, out.Events)

	out = apply(t, c, s, Navigate(string(store.ScreenHome)))
	assert.Equal(t, store.ScreenDashboard, out.Session.Screen)

	out = apply(t, c, s, Navigate(string(store.ScreenAssessment)))
	assert.Equal(t, store.ScreenAssessment, out.Session.Screen)
	assert.Nil(t, out.Session.Notice)
}

func TestRatingsOnlyOnTheirPage(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	calKey := assessment.QuestionKey{Battery: assessment.BatteryCalibration, Category: assessment.SelfInsight, Index: 0}
	asKey := assessment.QuestionKey{Battery: assessment.BatteryAssessment, Category: assessment.SelfInsight, Index: 0}

	likert := sessionAt(store.ScreenLikert)
	out := apply(t, c, likert, SetRating(calKey, 5))
	assert.Equal(t, 5, out.Session.Calibration[calKey])
	assert.Empty(t, likert.Calibration, "input session is never mutated")

	_, err := c.Apply(context.Background(), likert, SetRating(asKey, 5))
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = c.Apply(context.Background(), likert, SetRating(calKey, 6))
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = c.Apply(context.Background(), likert, Action{Type: ActionSetRatings, Ratings: assessment.Ratings{calKey: 2, asKey: 3}})
	assert.ErrorIs(t, err, ErrInvalidAction)

	out = apply(t, c, sessionAt(store.ScreenPreview), SetRating(calKey, 3))
	assert.Equal(t, CodeActionNotAllowed, out.Session.Notice.Code)
	assert.Empty(t, out.Session.Calibration)

	_, err = c.Apply(context.Background(), likert, Action{Type: "dance"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestLikertGatesPreview(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	s := sessionAt(store.ScreenLikert)

	out := apply(t, c, s, Navigate(string(store.ScreenPreview)))
	assert.Equal(t, store.ScreenLikert, out.Session.Screen)
	assert.Equal(t, CodeIncompleteRatings, out.Session.Notice.Code)
	assert.Contains(t, out.Session.Notice.Message, "0 of 24")

	s = apply(t, c, s, Action{Type: ActionSetRatings, Ratings: allRatings(c.Bank(), assessment.BatteryCalibration, 3)}).Session
	out = apply(t, c, s, Navigate(string(store.ScreenPreview)))
	assert.Equal(t, store.ScreenPreview, out.Session.Screen)

	s = apply(t, c, out.Session, Action{Type: ActionSetMutual}).Session
	assert.True(t, s.UseMutual)
	s = apply(t, c, s, SetFlag(ActionSetMutual, false)).Session
	assert.False(t, s.UseMutual)
}

func TestSubmitAssessment(t *testing.T) {
	blockNext := true
	gate := assessment.GateFunc(func(assessment.Ratings) bool {
		b := blockNext
		blockNext = false
		return b
	})
	c := newTestController(newMapRegistry(), gate)
	bank := c.Bank()

	s := sessionAt(store.ScreenAssessment)
	s.Calibration = allRatings(bank, assessment.BatteryCalibration, 3)

	out := apply(t, c, s, Action{Type: ActionSubmitAssessment})
	assert.Equal(t, CodeIncompleteRatings, out.Session.Notice.Code)
	assert.Nil(t, out.Session.Results)

	s = apply(t, c, s, Action{Type: ActionSetRatings, Ratings: allRatings(bank, assessment.BatteryAssessment, 3)}).Session

	out = apply(t, c, s, Action{Type: ActionSubmitAssessment})
	assert.Equal(t, store.ScreenAssessment, out.Session.Screen)
	assert.Equal(t, CodeModerationBlocked, out.Session.Notice.Code)
	assert.Nil(t, out.Session.Results)
	assert.Equal(t, s.Assessment, out.Session.Assessment, "a block keeps every answer")
	assert.Empty(t, out.Events)

	out = apply(t, c, out.Session, Action{Type: ActionSubmitAssessment})
	done := out.Session
	assert.Equal(t, store.ScreenDashboard, done.Screen)
	require.NotNil(t, done.Results)
	assert.InDelta(t, 50, done.Results.RGI, 1e-9)
	require.Len(t, done.Insights, len(assessment.Categories))
	assert.Equal(t, assessment.Neutral, done.Insights[0].Type)
	assert.Equal(t, []string{events.TypeAssessmentCompleted}, eventTypes(out.Events))

	allowed, err := c.Allowed(context.Background(), done)
	require.NoError(t, err)
	assert.Equal(t, []store.Screen{store.ScreenHome, store.ScreenAssessment}, allowed)
}

func TestSubmitAssessmentWithMutualReflection(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	bank := c.Bank()

	s := sessionAt(store.ScreenAssessment)
	s.UseMutual = true
	s.Calibration = allRatings(bank, assessment.BatteryCalibration, 3)
	s.Assessment = allRatings(bank, assessment.BatteryAssessment, 3)

	out := apply(t, c, s, Action{Type: ActionSubmitAssessment})
	require.NotNil(t, out.Session.Results)
	assert.InDelta(t, 56, out.Session.Results.RGI, 1e-9)
}

func TestDashboardReflection(t *testing.T) {
	c := newTestController(newMapRegistry(), nil)
	bank := c.Bank()
	result, err := assessment.NewEngine(bank, halfRandom{}).Score(
		allRatings(bank, assessment.BatteryCalibration, 3),
		allRatings(bank, assessment.BatteryAssessment, 3), false)
	require.NoError(t, err)

	s := sessionAt(store.ScreenDashboard)
	s.Results = result

	out := apply(t, c, s, Action{Type: ActionGenerateInsight, Text: "we worked on communication"})
	assert.Equal(t, "This ties to your Communication Style patterns.", out.Session.Notice.Message)
	assert.Equal(t, store.ScreenDashboard, out.Session.Screen)

	out = apply(t, c, s, Action{Type: ActionSaveReflection, Text: "   "})
	assert.Equal(t, CodeReflectionEmpty, out.Session.Notice.Code)
	assert.Empty(t, out.Events)

	out = apply(t, c, s, Action{Type: ActionSaveReflection, Text: " felt heard today "})
	assert.Equal(t, CodeReflectionSaved, out.Session.Notice.Code)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "felt heard today", out.Events[0].Payload()["text"])
}

func TestReset(t *testing.T) {
	bank := assessment.DefaultQuestionBank()
	populated := func() *store.Session {
		s := sessionAt(store.ScreenDashboard)
		s.Authenticated = true
		s.ConsentAccepted = true
		s.InviteCode = "AB12CD34"
		s.UseMutual = true
		s.Calibration = allRatings(bank, assessment.BatteryCalibration, 2)
		s.Assessment = allRatings(bank, assessment.BatteryAssessment, 2)
		s.Results = &assessment.ResultBundle{RGI: 50}
		s.Insights = []assessment.Insight{{Category: assessment.SelfInsight}}
		return s
	}

	t.Run("drops invite by default", func(t *testing.T) {
		reg := newMapRegistry()
		require.NoError(t, reg.Issue(context.Background(), "AB12CD34", "session-1"))
		c := newTestController(reg, nil)

		out := apply(t, c, populated(), Action{Type: ActionReset})
		s := out.Session
		assert.Equal(t, "session-1", s.ID)
		assert.Equal(t, store.ScreenEntry, s.Screen)
		assert.False(t, s.Authenticated)
		assert.False(t, s.UseMutual)
		assert.Empty(t, s.Calibration)
		assert.Empty(t, s.Assessment)
		assert.Nil(t, s.Results)
		assert.Nil(t, s.Insights)
		assert.Empty(t, s.InviteCode)
		assert.Equal(t, CodeSessionReset, s.Notice.Code)

		_, ok, _ := reg.Owner(context.Background(), "AB12CD34")
		assert.False(t, ok)
	})

	t.Run("keeps invite on request", func(t *testing.T) {
		reg := newMapRegistry()
		require.NoError(t, reg.Issue(context.Background(), "AB12CD34", "session-1"))
		c := newTestController(reg, nil)

		out := apply(t, c, populated(), Action{Type: ActionReset, KeepInvite: true})
		assert.Equal(t, "AB12CD34", out.Session.InviteCode)
		assert.Nil(t, out.Session.Results)
		assert.Empty(t, out.Session.Assessment)

		_, ok, _ := reg.Owner(context.Background(), "AB12CD34")
		assert.True(t, ok)
	})
}

func TestNormalizeAndGenerateCode(t *testing.T) {
	assert.Equal(t, "AB12CD34", NormalizeCode(" ab12cd34 "))
	assert.NotEqual(t, "AB12CD34", NormalizeCode("AB12CD35"))

	code, err := GenerateInviteCode()
	require.NoError(t, err)
	assert.Len(t, code, InviteCodeLength)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, code)
}
