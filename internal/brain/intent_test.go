package brain

import "testing"

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		query string
		want  IntentType
	}{
		{"Why was I distracted today?", IntentDistractionToday},
		{"How long was my longest focus session?", IntentLongestFocus},
		{"What were my main distractions?", IntentMainDistractions},
		{"When was I most productive?", IntentMostProductive},
		{"When do I focus best?", IntentBestFocusTime},
		{"Am I improving this week?", IntentImprovementWeek},
		{"What happened today?", IntentDailySummary},
		{"Do you support OpenAI integrations?", IntentExternalAIUnavailable},
		{"Where do I put my API key?", IntentExternalAIUnavailable},
		{"How does Smart Merging work?", IntentHelp},
		{"How do I export my data?", IntentHelp},
		{"What is Private Mode?", IntentHelp},
		{"banana", IntentUnsupported},
		{"", IntentUnsupported},
	}

	for _, tc := range cases {
		got := DetectIntent(tc.query)
		if got.Type != tc.want {
			t.Errorf("DetectIntent(%q) = %s, want %s", tc.query, got.Type, tc.want)
		}
	}
}

func TestDetectIntent_FocusDropTimes(t *testing.T) {
	cases := []struct {
		query string
		hour  int
	}{
		{"Why did my focus drop after 2pm?", 14},
		{"why did my focus drop after 2:30 pm", 14},
		{"Why did my focus drop after 14?", 14},
		{"why did my focus drop after 12am", 0},
		{"why did my focus drop after 12pm", 12},
		{"focus drop after 9 am", 9},
	}

	for _, tc := range cases {
		got := DetectIntent(tc.query)
		if got.Type != IntentFocusDrop {
			t.Errorf("DetectIntent(%q) = %s, want focus_drop", tc.query, got.Type)
			continue
		}
		if got.AfterHour != tc.hour {
			t.Errorf("DetectIntent(%q).AfterHour = %d, want %d", tc.query, got.AfterHour, tc.hour)
		}
	}
}

func TestDetectIntent_FocusDropWithoutTimeFallsThrough(t *testing.T) {
	got := DetectIntent("Why did my focus drop after lunch?")
	if got.Type != IntentUnsupported {
		t.Errorf("got %s, want unsupported (no parseable time)", got.Type)
	}
}

func TestDetectIntent_CarriesQueryText(t *testing.T) {
	got := DetectIntent("How do I export my data?")
	if got.Query != "How do I export my data?" {
		t.Errorf("Query = %q, want original text preserved", got.Query)
	}
}
