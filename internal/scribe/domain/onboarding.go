package domain

import (
	"net/url"
	"strings"
)

type OnboardingStatus string

const (
	OnboardingIncomplete OnboardingStatus = "incomplete"
	OnboardingCompleted  OnboardingStatus = "completed"
)

const (
	FirstOnboardingStep = 1
	LastOnboardingStep  = 9

	MinPostFrequency = 1
	MaxPostFrequency = 30

	MaxInspirationProfiles = 10
	MaxWebsiteLinkLength   = 2048
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type PostStyle string

const (
	PostStyleStandard  PostStyle = "standard"
	PostStyleFormatted PostStyle = "formatted"
	PostStyleChunky    PostStyle = "chunky"
	PostStyleShort     PostStyle = "short"
	PostStyleEmojis    PostStyle = "emojis"
)

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageGerman  Language = "german"
)

// OnboardingData collects the answers given during onboarding. Empty fields
// have not been answered yet.
type OnboardingData struct {
	WorkspaceType       WorkspaceType `json:"workspaceType,omitempty"`
	Theme               Theme         `json:"preferredTheme,omitempty"`
	PostStyle           PostStyle     `json:"postStyle,omitempty"`
	PostFrequency       int           `json:"postFrequency,omitempty"`
	Language            Language      `json:"language,omitempty"`
	WebsiteLink         string        `json:"websiteLink,omitempty"`
	InspirationProfiles []string      `json:"inspirationProfiles,omitempty"`
}

// WorkspaceSettings derives the settings of the workspace created when
// onboarding completes, filling unanswered fields with defaults.
func (d OnboardingData) WorkspaceSettings() WorkspaceSettings {
	s := DefaultWorkspaceSettings()
	if d.Theme != "" {
		s.Theme = d.Theme
	}
	if d.PostStyle != "" {
		s.PostStyle = d.PostStyle
	}
	if d.Language != "" {
		s.Language = d.Language
	}
	return s
}

// ValidateStep accepts any step in [1, 9]. Moving backwards is allowed.
func ValidateStep(step int) error {
	if step < FirstOnboardingStep || step > LastOnboardingStep {
		return ErrInvalidStep
	}
	return nil
}

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", invalid("preferredTheme", "must be light or dark")
}

func ParsePostStyle(s string) (PostStyle, error) {
	switch p := PostStyle(s); p {
	case PostStyleStandard, PostStyleFormatted, PostStyleChunky, PostStyleShort, PostStyleEmojis:
		return p, nil
	}
	return "", invalid("postStyle", "must be one of standard, formatted, chunky, short, emojis")
}

func ParseLanguage(s string) (Language, error) {
	switch l := Language(s); l {
	case LanguageEnglish, LanguageGerman:
		return l, nil
	}
	return "", invalid("language", "must be english or german")
}

func ValidatePostFrequency(n int) error {
	if n < MinPostFrequency || n > MaxPostFrequency {
		return invalid("postFrequency", "must be between 1 and 30")
	}
	return nil
}

// ValidateWebsiteLink accepts an empty link (clearing it) or an absolute
// http(s) URL.
func ValidateWebsiteLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", nil
	}
	if len(link) > MaxWebsiteLinkLength {
		return "", invalid("websiteLink", "is too long")
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("websiteLink", "must be an absolute http or https URL")
	}
	return u.String(), nil
}

// ValidateInspirationProfiles trims every entry. Empty entries and lists
// longer than MaxInspirationProfiles are rejected.
func ValidateInspirationProfiles(profiles []string) ([]string, error) {
	if len(profiles) > MaxInspirationProfiles {
		return nil, invalid("inspirationProfiles", "at most 10 profiles are allowed")
	}

	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, invalid("inspirationProfiles", "entries must not be empty")
		}
		out = append(out, p)
	}
	return out, nil
}
