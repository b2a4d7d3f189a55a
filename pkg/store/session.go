package store

import (
	"time"

	"relatescore-be/pkg/assessment"
)

// Screen identifies one wizard page.
type Screen string

const (
	ScreenEntry           Screen = "entry"
	ScreenCreateProfile   Screen = "create_profile"
	ScreenLogIn           Screen = "log_in"
	ScreenHome            Screen = "home"
	ScreenCreateInvite    Screen = "create_invite"
	ScreenPartnerEntry    Screen = "partner_entry"
	ScreenInviteAccepted  Screen = "invite_accepted"
	ScreenReflectionStart Screen = "reflection_start"
	ScreenLikert          Screen = "likert"
	ScreenPreview         Screen = "preview"
	ScreenAssessment      Screen = "assessment"
	ScreenDashboard       Screen = "dashboard"
)

// Screens lists every page in wizard order.
var Screens = []Screen{
	ScreenEntry,
	ScreenCreateProfile,
	ScreenLogIn,
	ScreenHome,
	ScreenCreateInvite,
	ScreenPartnerEntry,
	ScreenInviteAccepted,
	ScreenReflectionStart,
	ScreenLikert,
	ScreenPreview,
	ScreenAssessment,
	ScreenDashboard,
}

// NoticeKind tells the presentation layer how to render a notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	// NoticeWarning blocks the current page until the recovery screen is visited.
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is the advisory attached to the latest action.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	// Recovery is the single screen offered to leave a blocked page.
	Recovery Screen `json:"recovery,omitempty"`
}

// Session represents one user's run through the wizard.
type Session struct {
	ID     string `json:"id"`
	Screen Screen `json:"screen"`

	Authenticated   bool `json:"authenticated"`
	ConsentAccepted bool `json:"consent_accepted"`

	// Invite issued by this session (sender side).
	InviteCode string `json:"invite_code,omitempty"`

	// Partner side: the normalized code typed in and the session it matched.
	PartnerCode     string `json:"partner_code,omitempty"`
	PartnerAccepted bool   `json:"partner_accepted"`
	InvitedBy       string `json:"invited_by,omitempty"`

	UseMutual bool `json:"use_mutual"`

	Calibration assessment.Ratings `json:"calibration"`
	Assessment  assessment.Ratings `json:"assessment"`

	Results  *assessment.ResultBundle `json:"results,omitempty"`
	Insights []assessment.Insight     `json:"insights,omitempty"`

	Notice *Notice `json:"notice,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns a session with every field at its default.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		Screen:      ScreenEntry,
		Calibration: assessment.Ratings{},
		Assessment:  assessment.Ratings{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasResults reports whether the dashboard has something to show.
func (s *Session) HasResults() bool {
	return s.Results != nil
}

// Clone returns a deep copy so callers can mutate it without touching the
// stored value.
func (s *Session) Clone() *Session {
	out := *s
	out.Calibration = s.Calibration.Clone()
	out.Assessment = s.Assessment.Clone()
	out.Results = s.Results.Clone()
	if s.Insights != nil {
		out.Insights = append([]assessment.Insight(nil), s.Insights...)
	}
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return &out
}

// Reset returns a fresh session with the same id, keeping the invite code
// only when asked to.
func (s *Session) Reset(keepInvite bool, now time.Time) *Session {
	fresh := NewSession(s.ID, now)
	fresh.CreatedAt = s.CreatedAt
	if keepInvite {
		fresh.InviteCode = s.InviteCode
	}
	return fresh
}
