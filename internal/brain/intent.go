package brain

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentType classifies the purpose of a natural-language query.
type IntentType string

const (
	IntentDistractionToday      IntentType = "distraction_today"
	IntentFocusDrop             IntentType = "focus_drop"
	IntentBestFocusTime         IntentType = "best_focus_time"
	IntentImprovementWeek       IntentType = "improvement_week"
	IntentDailySummary          IntentType = "daily_summary"
	IntentLongestFocus          IntentType = "longest_focus"
	IntentMainDistractions      IntentType = "main_distractions"
	IntentMostProductive        IntentType = "most_productive"
	IntentHelp                  IntentType = "help"
	IntentExternalAIUnavailable IntentType = "external_ai_unavailable"
	IntentUnsupported           IntentType = "unsupported"
)

// Intent is a classified query. Query carries the raw text for help,
// external-AI, and unsupported intents; AfterHour is the parsed hour-of-day
// cutoff for focus-drop questions.
type Intent struct {
	Type      IntentType
	Query     string
	AfterHour int
}

var afterTimePattern = regexp.MustCompile(`after\s+(\d{1,2})(:\d{2})?\s*(am|pm)?`)

// DetectIntent runs the ordered keyword cascade over the lower-cased query.
// First match wins; the ordering is fixed and load-bearing.
func DetectIntent(query string) Intent {
	lower := strings.ToLower(query)

	contains := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}

	// External AI / API key queries
	if contains("api key", "api-key", "apikey", "openai", "chatgpt", "gpt",
		"anthropic", "claude", "llm", "ai key", "external ai") ||
		(contains("chatbot") && contains("integrat")) ||
		(contains("connect") && contains("ai", "api")) {
		return Intent{Type: IntentExternalAIUnavailable, Query: query}
	}

	// Help / app usage queries
	if (contains("how") && contains("export", "download", "save")) ||
		contains("wipe", "delete", "clear") ||
		contains("private mode", "blur") ||
		contains("context memory", "scope") ||
		contains("intelligence mode", "explain", "analyze") ||
		contains("smart merg", "cognitive mode") ||
		contains("focus score") ||
		(contains("how") && contains("work")) {
		return Intent{Type: IntentHelp, Query: query}
	}

	if contains("longest") && contains("focus") {
		return Intent{Type: IntentLongestFocus}
	}

	if contains("main", "top", "biggest") && contains("distract") {
		return Intent{Type: IntentMainDistractions}
	}

	if contains("most", "when") && contains("productive") {
		return Intent{Type: IntentMostProductive}
	}

	if contains("distract") && contains("today", "why") {
		return Intent{Type: IntentDistractionToday}
	}

	// "Why did my focus drop after <time>?" — without a parseable time the
	// query falls through to the remaining checks.
	if contains("focus") && contains("drop") && contains("after") {
		if m := afterTimePattern.FindStringSubmatch(lower); m != nil {
			hour, _ := strconv.Atoi(m[1])
			switch m[3] {
			case "pm":
				if hour < 12 {
					hour += 12
				}
			case "am":
				if hour == 12 {
					hour = 0
				}
			}
			return Intent{Type: IntentFocusDrop, AfterHour: hour}
		}
	}

	if contains("when", "what time") && contains("focus") && contains("best") {
		return Intent{Type: IntentBestFocusTime}
	}

	if contains("improv") && contains("week") {
		return Intent{Type: IntentImprovementWeek}
	}

	if contains("what") && contains("happen") && contains("today") {
		return Intent{Type: IntentDailySummary}
	}

	return Intent{Type: IntentUnsupported, Query: query}
}
