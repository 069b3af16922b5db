package domain

import (
	"strings"
	"time"
)

// PromptPrefix is prepended to every user prompt before it leaves the
// system through the relay.
const PromptPrefix = "Create a viral TikTok/Shorts video: "

// VoiceOption and StyleOption describe the selectable generation knobs.
// Premium options are gated on tier only and never consume credit.
type VoiceOption struct {
	ID      string
	Label   string
	Premium bool
}

type StyleOption struct {
	ID      string
	Label   string
	Premium bool
}

var voiceOptions = []VoiceOption{
	{ID: "deep", Label: "Deep Viral Voice", Premium: false},
	{ID: "narrator", Label: "Hyper-Realistic Narrator", Premium: true},
	{ID: "shoutcast", Label: "High-Energy Shoutcast", Premium: true},
}

var styleOptions = []StyleOption{
	{ID: "brainrot", Label: "Standard Brainrot", Premium: false},
	{ID: "cinematic", Label: "Cinematic Mastery", Premium: true},
	{ID: "luxury", Label: "Luxury/Wealth Aesthetic", Premium: true},
}

// Voices returns the voice catalog in display order.
func Voices() []VoiceOption {
	out := make([]VoiceOption, len(voiceOptions))
	copy(out, voiceOptions)
	return out
}

// Styles returns the style catalog in display order.
func Styles() []StyleOption {
	out := make([]StyleOption, len(styleOptions))
	copy(out, styleOptions)
	return out
}

// VoiceByID looks up a voice option.
func VoiceByID(id string) (VoiceOption, bool) {
	for _, v := range voiceOptions {
		if v.ID == id {
			return v, true
		}
	}
	return VoiceOption{}, false
}

// StyleByID looks up a style option.
func StyleByID(id string) (StyleOption, bool) {
	for _, s := range styleOptions {
		if s.ID == id {
			return s, true
		}
	}
	return StyleOption{}, false
}

// GenerationRequest is the ephemeral payload handed to the relay after a
// successful access check. Nothing in this system persists or tracks it
// afterwards.
type GenerationRequest struct {
	Email     string
	Prompt    string
	Voice     string
	Style     string
	Tier      Tier
	Timestamp time.Time
}

// ComposedPrompt returns the prompt as submitted to the relay.
func (g GenerationRequest) ComposedPrompt() string {
	return PromptPrefix + g.Prompt
}

// ValidatePrompt rejects empty or whitespace-only prompts.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrInvalidPrompt
	}
	return nil
}
