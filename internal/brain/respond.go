package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// Response is a rendered assistant answer.
type Response struct {
	Text               string
	Confidence         string
	SuggestedFollowUps []string
}

// SuggestedQuestions is the fixed, ordered list backing fallback responses
// and the CLI prompt hints.
var SuggestedQuestions = []string{
	"Why was I distracted today?",
	"When do I focus best?",
	"Am I improving this week?",
	"What happened today?",
	"Why did my focus drop after 2pm?",
	"How long was my longest focus session?",
	"What were my main distractions?",
	"When was I most productive?",
	"How do I export my data?",
	"What is Private Mode?",
	"How does Smart Merging work?",
}

// Provenance banners distinguishing computed facts from static help text.
const (
	bannerData = "📊 Your data (computed):"
	bannerHelp = "📚 App help (static):"
)

var clarifyingQuestions = []string{
	"Could you ask about a specific time period (today, this week)?",
	"Are you asking about your focus patterns, distractions, or how OMNITRACE works?",
	"Would you like to know about a specific activity or time of day?",
}

// FallbackResponse is the deterministic answer for unsupported or unmatched
// queries: a fixed limitation statement, a clarifying question selected by
// query length, and three suggested questions.
func FallbackResponse(query string) Response {
	limitation := "I can only answer questions using your local activity data and app help information. I don't guess or make up answers."

	clarify := clarifyingQuestions[len(query)%len(clarifyingQuestions)]
	suggestions := SuggestedQuestions[:3]

	var b strings.Builder
	b.WriteString(limitation)
	b.WriteString("\n\n")
	b.WriteString(clarify)
	b.WriteString("\n\nTry asking:")
	for _, s := range suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}

	return Response{
		Text:               b.String(),
		Confidence:         ConfidenceLow,
		SuggestedFollowUps: suggestions,
	}
}

// ExternalAIUnavailableResponse is the canned answer for API-key and
// external-AI questions, listing local-only capabilities.
func ExternalAIUnavailableResponse() Response {
	explanation := "External AI services (OpenAI, Anthropic, etc.) are not supported in this build. OMNIBRAIN runs fully offline using only your local OMNITRACE data and a static knowledge base. No API keys are accepted, and no network calls are made."

	suggestions := []string{
		"What happened today?",
		"Why was I distracted today?",
		"When do I focus best?",
	}

	var b strings.Builder
	b.WriteString(explanation)
	b.WriteString("\n\nYou can ask me about:")
	for _, s := range suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}

	return Response{
		Text:               b.String(),
		Confidence:         ConfidenceHigh,
		SuggestedFollowUps: suggestions,
	}
}

// GenerateResponse maps a classified intent to its fact generator, renders
// the facts in the requested mode, and prefixes the provenance banner. Any
// panic during fact generation is converted into the standard fallback
// response; the assistant never surfaces a raw error.
func GenerateResponse(intent Intent, events []event.Event, mode Mode) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = FallbackResponse("")
		}
	}()
	return generate(intent, events, mode, time.Now())
}

// GenerateResponseAt is GenerateResponse with an explicit "now" for
// deterministic evaluation of time-relative intents.
func GenerateResponseAt(intent Intent, events []event.Event, mode Mode, now time.Time) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = FallbackResponse("")
		}
	}()
	return generate(intent, events, mode, now)
}

func generate(intent Intent, events []event.Event, mode Mode, now time.Time) Response {
	var (
		payload       FactPayload
		isHelpContent bool
	)

	switch intent.Type {
	case IntentExternalAIUnavailable:
		return ExternalAIUnavailableResponse()

	case IntentHelp:
		results := SearchKnowledgeBase(intent.Query, 2)
		if len(results) == 0 {
			return FallbackResponse(intent.Query)
		}
		isHelpContent = true
		facts := make([]string, len(results))
		for i, entry := range results {
			facts[i] = fmt.Sprintf("%s: %s", entry.Title, entry.Answer)
		}
		payload = FactPayload{Facts: facts, Confidence: ConfidenceHigh}

	case IntentLongestFocus:
		payload = LongestFocusFacts(events)
	case IntentMainDistractions:
		payload = MainDistractionsFacts(events)
	case IntentMostProductive:
		payload = MostProductiveFacts(events)
	case IntentDistractionToday:
		payload = DistractionFacts(events)
	case IntentFocusDrop:
		after := time.Date(now.Year(), now.Month(), now.Day(), intent.AfterHour, 0, 0, 0, now.Location())
		payload = FocusDropFacts(events, after)
	case IntentBestFocusTime:
		payload = BestFocusTimeFacts(events)
	case IntentImprovementWeek:
		payload = ImprovementFacts(events, now)
	case IntentDailySummary:
		payload = DailySummaryFacts(events)

	default:
		return FallbackResponse(intent.Query)
	}

	banner := bannerData
	if isHelpContent {
		banner = bannerHelp
	}
	text := banner + "\n\n" + RenderWithMode(payload.Facts, mode)

	return Response{Text: text, Confidence: payload.Confidence}
}

// Ask classifies the query and generates the response in one step.
func Ask(query string, events []event.Event, mode Mode) Response {
	return GenerateResponse(DetectIntent(query), events, mode)
}
