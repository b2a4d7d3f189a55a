package flow

import (
	"fmt"

	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/store"
)

// guard returns a notice when the edge may not be taken yet.
type guard func(c *Controller, s *store.Session) *store.Notice

// effect mutates the session as the edge is taken.
type effect func(s *store.Session)

type edge struct {
	guard  guard
	effect effect
}

// transitions is the complete wizard graph: from -> to -> edge. Any pair not
// listed is a navigation error.
var transitions = map[store.Screen]map[store.Screen]edge{
	store.ScreenEntry: {
		store.ScreenCreateProfile: {},
		store.ScreenLogIn:         {},
		store.ScreenPartnerEntry:  {},
	},
	store.ScreenCreateProfile: {
		store.ScreenEntry: {},
		store.ScreenHome:  {guard: requireConsent, effect: authenticate},
	},
	store.ScreenLogIn: {
		store.ScreenEntry: {},
		store.ScreenHome:  {effect: authenticate},
	},
	store.ScreenHome: {
		store.ScreenEntry:        {},
		store.ScreenCreateInvite: {},
	},
	store.ScreenCreateInvite: {
		store.ScreenHome: {},
	},
	store.ScreenPartnerEntry: {
		store.ScreenEntry:          {},
		store.ScreenInviteAccepted: {guard: requirePartner},
	},
	store.ScreenInviteAccepted: {
		store.ScreenPartnerEntry:    {},
		store.ScreenReflectionStart: {},
	},
	store.ScreenReflectionStart: {
		store.ScreenInviteAccepted: {},
		store.ScreenLikert:         {},
	},
	store.ScreenLikert: {
		store.ScreenReflectionStart: {},
		store.ScreenPreview:         {guard: requireComplete(assessment.BatteryCalibration)},
	},
	store.ScreenPreview: {
		store.ScreenLikert:     {},
		store.ScreenAssessment: {},
	},
	store.ScreenAssessment: {
		store.ScreenPreview:   {},
		store.ScreenDashboard: {guard: requireResults},
	},
	store.ScreenDashboard: {
		store.ScreenHome:       {},
		store.ScreenAssessment: {},
	},
}

// ParseScreen accepts only known screen identifiers.
func ParseScreen(s string) (store.Screen, bool) {
	screen := store.Screen(s)
	_, ok := transitions[screen]
	return screen, ok
}

// Next lists the screens reachable from a screen, in wizard order.
func Next(from store.Screen) []store.Screen {
	out := make([]store.Screen, 0, len(transitions[from]))
	for _, screen := range store.Screens {
		if _, ok := transitions[from][screen]; ok {
			out = append(out, screen)
		}
	}
	return out
}

func authenticate(s *store.Session) {
	s.Authenticated = true
}

func requireConsent(_ *Controller, s *store.Session) *store.Notice {
	if s.ConsentAccepted {
		return nil
	}
	return &store.Notice{
		Kind:    store.NoticeError,
		Code:    CodeConsentRequired,
		Message: "Please confirm that you understand how your reflections are kept private.",
	}
}

func requirePartner(_ *Controller, s *store.Session) *store.Notice {
	if s.PartnerAccepted {
		return nil
	}
	return &store.Notice{
		Kind:    store.NoticeError,
		Code:    CodePartnerRequired,
		Message: "Enter a valid invitation code first.",
	}
}

func requireResults(_ *Controller, s *store.Session) *store.Notice {
	if s.HasResults() {
		return nil
	}
	return &store.Notice{
		Kind:    store.NoticeError,
		Code:    CodeSubmitRequired,
		Message: "Submit the assessment to see your dashboard.",
	}
}

func requireComplete(battery assessment.Battery) guard {
	return func(c *Controller, s *store.Session) *store.Notice {
		ratings := s.Calibration
		if battery == assessment.BatteryAssessment {
			ratings = s.Assessment
		}
		if ratings.Complete(c.bank, battery) {
			return nil
		}
		return incompleteNotice(c.bank, ratings, battery)
	}
}

func incompleteNotice(bank *assessment.QuestionBank, ratings assessment.Ratings, battery assessment.Battery) *store.Notice {
	return &store.Notice{
		Kind: store.NoticeError,
		Code: CodeIncompleteRatings,
		Message: fmt.Sprintf("Answer every %s question before continuing (%d of %d answered).",
			battery, ratings.Answered(bank, battery), bank.Size(battery)),
	}
}
