// Package flow is the wizard state machine. Every operation takes the
// current session value and returns the next one; the stored session is
// never mutated in place, so a failed action leaves no partial state.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/events"
	"relatescore-be/pkg/store"
)

// Notice codes.
const (
	CodeNavigationError   = "navigation_error"
	CodeActionNotAllowed  = "action_not_allowed"
	CodeLoginRequired     = "login_required"
	CodeResultsRequired   = "results_required"
	CodeNoActiveInvite    = "no_active_invite"
	CodeConsentRequired   = "consent_required"
	CodePartnerRequired   = "partner_required"
	CodeSubmitRequired    = "submit_required"
	CodeIncompleteRatings = "incomplete_ratings"
	CodeInviteMismatch    = "invite_mismatch"
	CodeInviteAccepted    = "invite_accepted"
	CodeModerationBlocked = "moderation_blocked"
	CodeReflectionSaved   = "reflection_saved"
	CodeReflectionEmpty   = "reflection_empty"
	CodeReflectionInsight = "reflection_insight"
	CodeSessionReset      = "session_reset"
)

const maxIssueAttempts = 5

// Outcome is the result of one applied action.
type Outcome struct {
	Session *store.Session
	Events  []events.Event
}

func (o *Outcome) emit(eventType string, at time.Time, data map[string]interface{}) {
	o.Events = append(o.Events, events.New(eventType, data, at))
}

// Controller applies user actions to sessions.
type Controller struct {
	bank    *assessment.QuestionBank
	engine  *assessment.Engine
	gate    assessment.ModerationGate
	invites InviteRegistry
	codes   CodeGenerator
	clock   func() time.Time
}

type Option func(*Controller)

func WithCodeGenerator(g CodeGenerator) Option {
	return func(c *Controller) { c.codes = g }
}

func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

func NewController(engine *assessment.Engine, gate assessment.ModerationGate, invites InviteRegistry, opts ...Option) *Controller {
	if gate == nil {
		gate = assessment.AllowAll
	}
	c := &Controller{
		bank:    engine.Bank(),
		engine:  engine,
		gate:    gate,
		invites: invites,
		codes:   GenerateInviteCode,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Bank() *assessment.QuestionBank {
	return c.bank
}

// Apply runs one action against a copy of current. On error the returned
// outcome is nil and current is untouched.
func (c *Controller) Apply(ctx context.Context, current *store.Session, action Action) (*Outcome, error) {
	now := c.clock()
	out := &Outcome{Session: current.Clone()}
	s := out.Session
	s.Notice = nil

	var err error
	switch action.Type {
	case ActionNavigate:
		err = c.navigate(ctx, out, action.To, now)
	case ActionReset:
		err = c.reset(ctx, out, action.KeepInvite, now)
	default:
		err = c.onScreen(ctx, out, action, now)
	}
	if err != nil {
		return nil, err
	}

	out.Session.UpdatedAt = now
	return out, nil
}

// Blocker returns the advisory that holds the session on its current page,
// or nil when the page's precondition holds.
func (c *Controller) Blocker(ctx context.Context, s *store.Session) (*store.Notice, error) {
	switch s.Screen {
	case store.ScreenHome:
		if !s.Authenticated {
			return &store.Notice{
				Kind:     store.NoticeWarning,
				Code:     CodeLoginRequired,
				Message:  "You must be logged in to access Home.",
				Recovery: store.ScreenEntry,
			}, nil
		}
	case store.ScreenDashboard:
		if !s.HasResults() {
			return &store.Notice{
				Kind:     store.NoticeWarning,
				Code:     CodeResultsRequired,
				Message:  "No assessment results found yet. Please complete the assessment.",
				Recovery: store.ScreenAssessment,
			}, nil
		}
	case store.ScreenPartnerEntry:
		if s.PartnerAccepted {
			return nil, nil
		}
		active, err := c.invites.Any(ctx)
		if err != nil {
			return nil, fmt.Errorf("check active invites: %w", err)
		}
		if !active {
			return &store.Notice{
				Kind:     store.NoticeInfo,
				Code:     CodeNoActiveInvite,
				Message:  "No active invite exists yet. Ask the sender to generate a code (Home → Create Invite) and share it with you.",
				Recovery: store.ScreenEntry,
			}, nil
		}
	}
	return nil, nil
}

// Allowed lists the screens the session may navigate to right now.
func (c *Controller) Allowed(ctx context.Context, s *store.Session) ([]store.Screen, error) {
	blocked, err := c.Blocker(ctx, s)
	if err != nil {
		return nil, err
	}
	if blocked != nil {
		return []store.Screen{blocked.Recovery}, nil
	}
	return Next(s.Screen), nil
}

// InviteActive reports whether the session's own invite code can still be claimed.
func (c *Controller) InviteActive(ctx context.Context, s *store.Session) (bool, error) {
	if s.InviteCode == "" {
		return false, nil
	}
	owner, ok, err := c.invites.Owner(ctx, s.InviteCode)
	if err != nil {
		return false, err
	}
	return ok && owner == s.ID, nil
}

func (c *Controller) navigate(ctx context.Context, out *Outcome, to string, now time.Time) error {
	s := out.Session
	target, known := ParseScreen(to)
	if !known {
		return c.navigationError(ctx, out, to, now)
	}

	blocked, err := c.Blocker(ctx, s)
	if err != nil {
		return err
	}
	if blocked != nil && target != blocked.Recovery {
		s.Notice = blocked
		return nil
	}
	// Re-selecting the current page (a repeated click or a retried request) stays put.
	if target == s.Screen {
		return nil
	}

	e, ok := transitions[s.Screen][target]
	if !ok {
		return c.navigationError(ctx, out, to, now)
	}
	if e.guard != nil {
		if n := e.guard(c, s); n != nil {
			s.Notice = n
			return nil
		}
	}
	if e.effect != nil {
		e.effect(s)
	}
	s.Screen = target
	return c.enter(ctx, out, now)
}

// navigationError falls back to the entry page. Collected data is kept.
func (c *Controller) navigationError(ctx context.Context, out *Outcome, to string, now time.Time) error {
	s := out.Session
	from := s.Screen
	s.Screen = store.ScreenEntry
	if err := c.enter(ctx, out, now); err != nil {
		return err
	}
	s.Notice = &store.Notice{
		Kind:    store.NoticeWarning,
		Code:    CodeNavigationError,
		Message: fmt.Sprintf("Page %q is not available from %q. You have been returned to the start.", to, from),
	}
	return nil
}

// enter runs the arrival rules of the session's (new) current screen.
func (c *Controller) enter(ctx context.Context, out *Outcome, now time.Time) error {
	s := out.Session
	if s.Screen == store.ScreenCreateInvite {
		if err := c.ensureInvite(ctx, out, now); err != nil {
			return err
		}
	}
	blocked, err := c.Blocker(ctx, s)
	if err != nil {
		return err
	}
	if blocked != nil {
		s.Notice = blocked
	}
	return nil
}

// ensureInvite issues a code when the session has none or its code was
// claimed or expired.
func (c *Controller) ensureInvite(ctx context.Context, out *Outcome, now time.Time) error {
	s := out.Session
	active, err := c.InviteActive(ctx, s)
	if err != nil {
		return fmt.Errorf("check invite: %w", err)
	}
	if active {
		return nil
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := c.codes()
		if err != nil {
			return fmt.Errorf("generate invite code: %w", err)
		}
		err = c.invites.Issue(ctx, code, s.ID)
		if errors.Is(err, ErrInviteCodeTaken) {
			continue
		}
		if err != nil {
			return fmt.Errorf("issue invite code: %w", err)
		}
		s.InviteCode = code
		out.emit(events.TypeInviteIssued, now, map[string]interface{}{
			"session_id": s.ID,
		})
		return nil
	}
	return fmt.Errorf("issue invite code: %w after %d attempts", ErrInviteCodeTaken, maxIssueAttempts)
}

func (c *Controller) reset(ctx context.Context, out *Outcome, keepInvite bool, now time.Time) error {
	s := out.Session
	if !keepInvite && s.InviteCode != "" {
		if err := c.invites.Revoke(ctx, s.InviteCode, s.ID); err != nil {
			return fmt.Errorf("revoke invite: %w", err)
		}
	}
	out.Session = s.Reset(keepInvite, now)
	out.Session.Notice = &store.Notice{
		Kind:    store.NoticeInfo,
		Code:    CodeSessionReset,
		Message: "Your reflections were withdrawn and this session was reset.",
	}
	out.emit(events.TypeSessionReset, now, map[string]interface{}{
		"session_id":  s.ID,
		"keep_invite": keepInvite,
	})
	return nil
}

// screenFor is the page each screen-bound action belongs to.
var screenFor = map[ActionType]store.Screen{
	ActionSetConsent:        store.ScreenCreateProfile,
	ActionSetMutual:         store.ScreenPreview,
	ActionSubmitPartnerCode: store.ScreenPartnerEntry,
	ActionSubmitAssessment:  store.ScreenAssessment,
	ActionSaveReflection:    store.ScreenDashboard,
	ActionGenerateInsight:   store.ScreenDashboard,
}

func (c *Controller) onScreen(ctx context.Context, out *Outcome, action Action, now time.Time) error {
	s := out.Session

	battery, isRating := ratingBattery(s.Screen)
	want, bound := screenFor[action.Type]
	switch {
	case action.Type == ActionSetRating || action.Type == ActionSetRatings:
		if !isRating {
			s.Notice = notAllowed(action.Type, s.Screen)
			return nil
		}
	case bound:
		if s.Screen != want {
			s.Notice = notAllowed(action.Type, s.Screen)
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, action.Type)
	}

	blocked, err := c.Blocker(ctx, s)
	if err != nil {
		return err
	}
	if blocked != nil {
		s.Notice = blocked
		return nil
	}

	switch action.Type {
	case ActionSetConsent:
		s.ConsentAccepted = flag(action.Flag, s.ConsentAccepted)
	case ActionSetMutual:
		s.UseMutual = flag(action.Flag, s.UseMutual)
	case ActionSetRating:
		return c.setRatings(s, battery, assessment.Ratings{action.Question: action.Rating})
	case ActionSetRatings:
		return c.setRatings(s, battery, action.Ratings)
	case ActionSubmitPartnerCode:
		return c.submitPartnerCode(ctx, out, action.Code, now)
	case ActionSubmitAssessment:
		return c.submitAssessment(out, now)
	case ActionSaveReflection:
		c.saveReflection(out, action.Text, now)
	case ActionGenerateInsight:
		s.Notice = &store.Notice{
			Kind:    store.NoticeInfo,
			Code:    CodeReflectionInsight,
			Message: assessment.ReflectionPrompt(action.Text),
		}
	}
	return nil
}

func ratingBattery(screen store.Screen) (assessment.Battery, bool) {
	switch screen {
	case store.ScreenLikert:
		return assessment.BatteryCalibration, true
	case store.ScreenAssessment:
		return assessment.BatteryAssessment, true
	}
	return "", false
}

func flag(v *bool, current bool) bool {
	if v == nil {
		return !current
	}
	return *v
}

func notAllowed(t ActionType, screen store.Screen) *store.Notice {
	return &store.Notice{
		Kind:    store.NoticeError,
		Code:    CodeActionNotAllowed,
		Message: fmt.Sprintf("%s is not available on the %s page.", t, screen),
	}
}

// setRatings applies all answers or none.
func (c *Controller) setRatings(s *store.Session, battery assessment.Battery, ratings assessment.Ratings) error {
	if len(ratings) == 0 {
		return fmt.Errorf("%w: no ratings given", ErrInvalidAction)
	}
	target := s.Calibration
	if battery == assessment.BatteryAssessment {
		target = s.Assessment
	}
	staged := target.Clone()
	for key, value := range ratings {
		if err := staged.Set(c.bank, battery, key, value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	}
	if battery == assessment.BatteryAssessment {
		s.Assessment = staged
	} else {
		s.Calibration = staged
	}
	return nil
}

func (c *Controller) submitPartnerCode(ctx context.Context, out *Outcome, code string, now time.Time) error {
	s := out.Session
	normalized := NormalizeCode(code)
	s.PartnerCode = normalized

	mismatch := &store.Notice{
		Kind:    store.NoticeError,
		Code:    CodeInviteMismatch,
		Message: "Code not recognized. Ask the sender to generate a new code and share it again.",
	}
	if len(normalized) != InviteCodeLength {
		s.Notice = mismatch
		return nil
	}

	issuer, ok, err := c.invites.Claim(ctx, normalized, s.ID)
	if err != nil {
		return fmt.Errorf("claim invite: %w", err)
	}
	if !ok {
		s.Notice = mismatch
		return nil
	}

	s.PartnerAccepted = true
	s.InvitedBy = issuer
	s.Screen = store.ScreenInviteAccepted
	s.Notice = &store.Notice{
		Kind:    store.NoticeSuccess,
		Code:    CodeInviteAccepted,
		Message: "Connection established. You may begin reflection at your own pace.",
	}
	out.emit(events.TypeInviteAccepted, now, map[string]interface{}{
		"session_id":        s.ID,
		"issuer_session_id": issuer,
	})
	return nil
}

func (c *Controller) submitAssessment(out *Outcome, now time.Time) error {
	s := out.Session
	if !s.Calibration.Complete(c.bank, assessment.BatteryCalibration) {
		s.Notice = incompleteNotice(c.bank, s.Calibration, assessment.BatteryCalibration)
		s.Notice.Recovery = store.ScreenLikert
		return nil
	}
	if !s.Assessment.Complete(c.bank, assessment.BatteryAssessment) {
		s.Notice = incompleteNotice(c.bank, s.Assessment, assessment.BatteryAssessment)
		return nil
	}

	if c.gate.Blocked(s.Assessment) {
		s.Notice = &store.Notice{
			Kind:    store.NoticeError,
			Code:    CodeModerationBlocked,
			Message: "Input blocked for toxicity. Please revise.",
		}
		return nil
	}

	result, err := c.engine.Score(s.Calibration, s.Assessment, s.UseMutual)
	if err != nil {
		return fmt.Errorf("score assessment: %w", err)
	}
	s.Results = result
	s.Insights = assessment.GenerateInsights(result)
	s.Screen = store.ScreenDashboard

	scores := make(map[string]interface{}, len(result.Categories))
	for _, cs := range result.Categories {
		scores[string(cs.Category)] = cs.Score
	}
	out.emit(events.TypeAssessmentCompleted, now, map[string]interface{}{
		"session_id": s.ID,
		"invited_by": s.InvitedBy,
		"rgi":        result.RGI,
		"mutual":     result.Mutual,
		"scores":     scores,
	})
	return nil
}

func (c *Controller) saveReflection(out *Outcome, text string, now time.Time) {
	s := out.Session
	text = strings.TrimSpace(text)
	if text == "" {
		s.Notice = &store.Notice{
			Kind:    store.NoticeError,
			Code:    CodeReflectionEmpty,
			Message: "Write a few words before saving your reflection.",
		}
		return
	}
	s.Notice = &store.Notice{
		Kind:    store.NoticeSuccess,
		Code:    CodeReflectionSaved,
		Message: "Reflection saved. Carry this insight forward.",
	}
	out.emit(events.TypeReflectionSaved, now, map[string]interface{}{
		"session_id": s.ID,
		"text":       text,
		"rgi":        s.Results.RGI,
	})
}
