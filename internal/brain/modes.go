package brain

import (
	"fmt"
	"strings"
)

// Mode is the intelligence mode controlling how facts are presented. The
// underlying facts are identical across modes.
type Mode string

const (
	ModeExplain Mode = "explain"
	ModeAnalyze Mode = "analyze"
	ModeCoach   Mode = "coach"
	ModeSilent  Mode = "silent"
)

// ParseMode maps free text to a mode, defaulting to explain.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAnalyze:
		return ModeAnalyze
	case ModeCoach:
		return ModeCoach
	case ModeSilent:
		return ModeSilent
	default:
		return ModeExplain
	}
}

// ModeDescriptions maps each mode to its one-line description.
var ModeDescriptions = map[Mode]string{
	ModeExplain: "Clear, detailed explanations with context",
	ModeAnalyze: "Data-driven insights with patterns",
	ModeCoach:   "Supportive guidance and recommendations",
	ModeSilent:  "Brief, minimal output",
}

// RenderWithMode renders facts in the given presentation style: explain
// joins the first three facts as a paragraph, analyze numbers all facts,
// coach prefixes each with an emoji, silent emits only the first fact as a
// bullet.
func RenderWithMode(facts []string, mode Mode) string {
	if len(facts) == 0 {
		return ""
	}

	switch mode {
	case ModeAnalyze:
		lines := make([]string, len(facts))
		for i, f := range facts {
			lines[i] = fmt.Sprintf("%d. %s", i+1, f)
		}
		return strings.Join(lines, "\n")

	case ModeCoach:
		lines := make([]string, len(facts))
		for i, f := range facts {
			lines[i] = "💡 " + f
		}
		return strings.Join(lines, "\n\n")

	case ModeSilent:
		return "• " + facts[0]

	default: // explain
		n := len(facts)
		if n > 3 {
			n = 3
		}
		return strings.Join(facts[:n], " ")
	}
}
