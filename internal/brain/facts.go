package brain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sgrant/omnitrace/internal/analytics"
	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// Confidence levels attached to fact payloads.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// FactPayload is the list of deterministic, data-derived sentences plus a
// confidence level, prior to style rendering.
type FactPayload struct {
	Facts      []string
	Confidence string
}

// DistractionFacts answers "why was I distracted today?".
func DistractionFacts(events []event.Event) FactPayload {
	segments := segment.Derive(events)
	var distraction []segment.Segment
	for _, s := range segments {
		if s.Category == event.CategoryDistraction {
			distraction = append(distraction, s)
		}
	}

	if len(distraction) == 0 {
		return FactPayload{
			Facts:      []string{"No significant distractions detected in this period."},
			Confidence: ConfidenceHigh,
		}
	}

	var facts []string
	var total int64
	for _, s := range distraction {
		total += s.Duration()
	}
	facts = append(facts, fmt.Sprintf("You had %d distraction periods totaling %d minutes.",
		len(distraction), roundMin(total)))

	hourCounts := make(map[int]int)
	for _, s := range distraction {
		hourCounts[hourOf(s.StartTime)]++
	}
	if len(hourCounts) > 0 {
		peakHour, _ := peakIntCount(hourCounts)
		facts = append(facts, fmt.Sprintf("Most distractions occurred around %d:00.", peakHour))

		avg := roundMin(total / int64(len(distraction)))
		facts = append(facts, fmt.Sprintf("Average distraction duration was %d minutes.", avg))

		morning, afternoon, evening := 0, 0, 0
		for _, s := range distraction {
			switch h := hourOf(s.StartTime); {
			case h >= 6 && h < 12:
				morning++
			case h >= 12 && h < 18:
				afternoon++
			default:
				evening++
			}
		}
		if morning > 0 || afternoon > 0 || evening > 0 {
			facts = append(facts, fmt.Sprintf("Distribution: %d morning, %d afternoon, %d evening.",
				morning, afternoon, evening))
		}
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// FocusDropFacts answers "why did my focus drop after <time>?" for events at
// or after the cutoff.
func FocusDropFacts(events []event.Event, after time.Time) FactPayload {
	cutoff := after.UnixMilli()
	var relevant []event.Event
	for _, e := range events {
		if e.Timestamp >= cutoff {
			relevant = append(relevant, e)
		}
	}

	if len(relevant) == 0 {
		return FactPayload{
			Facts:      []string{"Insufficient data after the specified time. Could you clarify which day or time period you mean?"},
			Confidence: ConfidenceLow,
		}
	}

	segments := segment.Derive(relevant)
	var distraction, focus []segment.Segment
	for _, s := range segments {
		switch {
		case s.Category == event.CategoryDistraction:
			distraction = append(distraction, s)
		case s.Category.IsFocus():
			focus = append(focus, s)
		}
	}
	idleStarts := 0
	navCount := 0
	for _, e := range relevant {
		switch e.Type {
		case event.TypeIdleStart:
			idleStarts++
		case event.TypeNavigation:
			navCount++
		}
	}

	var facts []string
	if len(distraction) > 0 {
		var total int64
		for _, s := range distraction {
			total += s.Duration()
		}
		facts = append(facts, fmt.Sprintf("After %s, you had %d distraction periods totaling %d minutes.",
			after.Format("03:04 PM"), len(distraction), roundMin(total)))
	}
	if idleStarts > 0 {
		facts = append(facts, fmt.Sprintf("There were %d idle periods detected.", idleStarts))
	}
	if len(focus) > 0 {
		var total int64
		for _, s := range focus {
			total += s.Duration()
		}
		facts = append(facts, fmt.Sprintf("You maintained %d minutes of focus work after that time.", roundMin(total)))
	}
	if navCount > 0 {
		facts = append(facts, fmt.Sprintf("Session fragmentation: %d screen changes detected.", navCount))
	}

	if len(facts) == 0 {
		facts = append(facts, fmt.Sprintf("Activity after %s appears stable with no major focus drops.",
			after.Format("03:04 PM")))
	}

	confidence := ConfidenceMedium
	if len(distraction) > 0 {
		confidence = ConfidenceHigh
	}
	return FactPayload{Facts: facts, Confidence: confidence}
}

// BestFocusTimeFacts answers "when do I focus best?".
func BestFocusTimeFacts(events []event.Event) FactPayload {
	focus := segment.FilterFocus(segment.Derive(events))
	if len(focus) == 0 {
		return FactPayload{
			Facts:      []string{"Not enough focus activity recorded to determine best times. Try asking about a specific day or activity type."},
			Confidence: ConfidenceLow,
		}
	}

	hourDurations := make(map[int]int64)
	var totalFocus int64
	for _, s := range focus {
		hourDurations[hourOf(s.StartTime)] += s.Duration()
		totalFocus += s.Duration()
	}

	peakHour, peakDuration := peakIntDuration(hourDurations)

	var facts []string
	facts = append(facts, fmt.Sprintf("Your best focus time is around %d:00 - %d:00.", peakHour, peakHour+1))
	facts = append(facts, fmt.Sprintf("You spent %d minutes in focused work during this hour.", roundMin(peakDuration)))

	peakPct := int(math.Round(float64(peakDuration) / float64(totalFocus) * 100))
	facts = append(facts, fmt.Sprintf("This represents %d%% of your total focus time.", peakPct))

	sorted := sortHoursByDuration(hourDurations)
	if len(sorted) > 1 {
		second := sorted[1]
		facts = append(facts, fmt.Sprintf("Second-best focus window: %d:00 with %d minutes.",
			second.hour, roundMin(second.duration)))
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// ImprovementFacts answers "am I improving this week?" by comparing this
// week's metrics against last week's.
func ImprovementFacts(events []event.Event, now time.Time) FactPayload {
	weekAgo := now.UnixMilli() - 7*24*60*60*1000
	twoWeeksAgo := weekAgo - 7*24*60*60*1000

	var thisWeek, lastWeek []event.Event
	for _, e := range events {
		switch {
		case e.Timestamp >= weekAgo:
			thisWeek = append(thisWeek, e)
		case e.Timestamp >= twoWeeksAgo:
			lastWeek = append(lastWeek, e)
		}
	}

	if len(thisWeek) == 0 || len(lastWeek) == 0 {
		return FactPayload{
			Facts:      []string{"Not enough data to compare weekly progress. Try asking about today or a specific time period."},
			Confidence: ConfidenceLow,
		}
	}

	thisMetrics := analytics.ComputeMetrics(thisWeek)
	lastMetrics := analytics.ComputeMetrics(lastWeek)

	var facts []string

	focusChange := thisMetrics.FocusDensity - lastMetrics.FocusDensity
	switch {
	case focusChange > 0.05:
		facts = append(facts, fmt.Sprintf("Your focus density improved by %d%% this week.",
			int(math.Round(focusChange*100))))
	case focusChange < -0.05:
		facts = append(facts, fmt.Sprintf("Your focus density decreased by %d%% this week.",
			int(math.Round(-focusChange*100))))
	default:
		facts = append(facts, "Your focus density remained stable this week.")
	}

	switchChange := thisMetrics.ContextSwitches - lastMetrics.ContextSwitches
	if switchChange < 0 {
		facts = append(facts, fmt.Sprintf("You reduced context switches by %d.", -switchChange))
	} else if switchChange > 0 {
		facts = append(facts, fmt.Sprintf("Context switches increased by %d.", switchChange))
	}

	activeChange := roundMinSigned(thisMetrics.TotalActiveTime - lastMetrics.TotalActiveTime)
	if activeChange > 30 || activeChange < -30 {
		direction := "increased"
		if activeChange < 0 {
			direction = "decreased"
			activeChange = -activeChange
		}
		facts = append(facts, fmt.Sprintf("Active time %s by %d minutes.", direction, activeChange))
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceMedium}
}

// DailySummaryFacts answers "what happened today?".
func DailySummaryFacts(events []event.Event) FactPayload {
	if len(events) == 0 {
		return FactPayload{
			Facts:      []string{"No activity recorded today."},
			Confidence: ConfidenceHigh,
		}
	}

	segments := segment.Derive(events)
	metrics := analytics.ComputeMetrics(events)

	var facts []string
	facts = append(facts, fmt.Sprintf("You were active for %d minutes with %d minutes of idle time.",
		roundMin(metrics.TotalActiveTime), roundMin(metrics.TotalIdleTime)))

	totals := make(map[event.Category]int64)
	for _, s := range segments {
		totals[s.Category] += s.Duration()
	}
	sorted := sortCategoriesByDuration(totals)
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}
	if len(sorted) > 0 {
		facts = append(facts, fmt.Sprintf("Most time spent on %s (%d minutes).",
			sorted[0].category, roundMin(sorted[0].duration)))
	}

	facts = append(facts, fmt.Sprintf("You had %d context switches today.", metrics.ContextSwitches))

	if len(sorted) > 1 {
		parts := make([]string, len(sorted))
		for i, c := range sorted {
			parts[i] = fmt.Sprintf("%s: %dmin", c.category, roundMin(c.duration))
		}
		facts = append(facts, fmt.Sprintf("Category breakdown: %s.", strings.Join(parts, ", ")))
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// LongestFocusFacts answers "how long was my longest focus session?".
func LongestFocusFacts(events []event.Event) FactPayload {
	focus := segment.FilterFocus(segment.Derive(events))
	if len(focus) == 0 {
		return FactPayload{
			Facts:      []string{"No focus sessions recorded yet. Try asking about a different time period."},
			Confidence: ConfidenceLow,
		}
	}

	longest := focus[0]
	for _, s := range focus[1:] {
		if s.Duration() > longest.Duration() {
			longest = s
		}
	}

	var facts []string
	minutes := roundMin(longest.Duration())
	hours := minutes / 60
	remaining := minutes % 60
	if hours > 1 {
		facts = append(facts, fmt.Sprintf("Your longest focus session was %d hours and %d minutes.", hours, remaining))
	} else if hours == 1 {
		facts = append(facts, fmt.Sprintf("Your longest focus session was 1 hour and %d minutes.", remaining))
	} else {
		facts = append(facts, fmt.Sprintf("Your longest focus session was %d minutes.", minutes))
	}

	start := time.UnixMilli(longest.StartTime)
	facts = append(facts, fmt.Sprintf("It occurred at %s on %s.",
		start.Format("03:04 PM"), start.Format("1/2/2006")))

	var total int64
	for _, s := range focus {
		total += s.Duration()
	}
	avg := roundMin(total / int64(len(focus)))
	facts = append(facts, fmt.Sprintf("Your average focus session is %d minutes.", avg))
	facts = append(facts, fmt.Sprintf("Total focus sessions recorded: %d.", len(focus)))

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// MainDistractionsFacts answers "what were my main distractions?".
func MainDistractionsFacts(events []event.Event) FactPayload {
	segments := segment.Derive(events)
	var distraction []segment.Segment
	for _, s := range segments {
		if s.Category == event.CategoryDistraction {
			distraction = append(distraction, s)
		}
	}
	if len(distraction) == 0 {
		return FactPayload{
			Facts:      []string{"No distractions detected in this period."},
			Confidence: ConfidenceHigh,
		}
	}

	hourDurations := make(map[int]int64)
	var total int64
	for _, s := range distraction {
		hourDurations[hourOf(s.StartTime)] += s.Duration()
		total += s.Duration()
	}

	sorted := sortHoursByDuration(hourDurations)
	top := sorted[0]

	var facts []string
	facts = append(facts, fmt.Sprintf("Main distraction window: %d:00 - %d:00 with %d minutes.",
		top.hour, top.hour+1, roundMin(top.duration)))
	facts = append(facts, fmt.Sprintf("Total distraction time: %d minutes across %d periods.",
		roundMin(total), len(distraction)))
	facts = append(facts, fmt.Sprintf("Average distraction length: %d minutes.",
		roundMin(total/int64(len(distraction)))))

	if len(sorted) > 1 {
		n := len(sorted)
		if n > 3 {
			n = 3
		}
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = fmt.Sprintf("%d:00 (%dmin)", sorted[i].hour, roundMin(sorted[i].duration))
		}
		facts = append(facts, fmt.Sprintf("Top distraction hours: %s.", strings.Join(parts, ", ")))
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// MostProductiveFacts answers "when was I most productive?".
func MostProductiveFacts(events []event.Event) FactPayload {
	productive := segment.FilterFocus(segment.Derive(events))
	if len(productive) == 0 {
		return FactPayload{
			Facts:      []string{"Not enough productive activity recorded. Try asking about a different time period."},
			Confidence: ConfidenceLow,
		}
	}

	var facts []string

	hourDurations := make(map[int]int64)
	for _, s := range productive {
		hourDurations[hourOf(s.StartTime)] += s.Duration()
	}
	peakHour, peakDuration := peakIntDuration(hourDurations)
	facts = append(facts, fmt.Sprintf("Most productive time: %d:00 - %d:00 with %d minutes of focused work.",
		peakHour, peakHour+1, roundMin(peakDuration)))

	dayDurations := make(map[string]int64)
	var dayOrder []string
	for _, s := range productive {
		day := time.UnixMilli(s.StartTime).Format("1/2/2006")
		if _, seen := dayDurations[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		dayDurations[day] += s.Duration()
	}
	if len(dayDurations) > 1 {
		peakDay := ""
		var peakDayDuration int64
		for _, day := range dayOrder {
			if dayDurations[day] > peakDayDuration {
				peakDayDuration = dayDurations[day]
				peakDay = day
			}
		}
		facts = append(facts, fmt.Sprintf("Most productive day: %s with %d minutes.",
			peakDay, roundMin(peakDayDuration)))
	}

	var total int64
	for _, s := range productive {
		total += s.Duration()
	}
	facts = append(facts, fmt.Sprintf("Total productive time: %d minutes across %d sessions.",
		roundMin(total), len(productive)))

	sorted := sortHoursByDuration(hourDurations)
	if len(sorted) > 1 {
		n := len(sorted)
		if n > 3 {
			n = 3
		}
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = fmt.Sprintf("%d:00 (%dmin)", sorted[i].hour, roundMin(sorted[i].duration))
		}
		facts = append(facts, fmt.Sprintf("Top productive hours: %s.", strings.Join(parts, ", ")))
	}

	return FactPayload{Facts: facts, Confidence: ConfidenceHigh}
}

// --- Helpers ---

func hourOf(ms int64) int {
	return time.UnixMilli(ms).Hour()
}

// roundMin converts milliseconds to whole minutes, rounding half up.
func roundMin(ms int64) int {
	return int((ms + 30_000) / 60_000)
}

func roundMinSigned(ms int64) int {
	if ms < 0 {
		return -roundMin(-ms)
	}
	return roundMin(ms)
}

// peakIntCount returns the key with the highest count, lowest key winning
// ties for determinism.
func peakIntCount(counts map[int]int) (int, int) {
	peakKey, peakCount := 0, 0
	for k := 0; k < 24; k++ {
		if counts[k] > peakCount {
			peakCount = counts[k]
			peakKey = k
		}
	}
	return peakKey, peakCount
}

func peakIntDuration(durations map[int]int64) (int, int64) {
	peakKey := 0
	var peakDuration int64
	for k := 0; k < 24; k++ {
		if durations[k] > peakDuration {
			peakDuration = durations[k]
			peakKey = k
		}
	}
	return peakKey, peakDuration
}

type hourDuration struct {
	hour     int
	duration int64
}

func sortHoursByDuration(durations map[int]int64) []hourDuration {
	var sorted []hourDuration
	for h := 0; h < 24; h++ {
		if d, ok := durations[h]; ok {
			sorted = append(sorted, hourDuration{hour: h, duration: d})
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].duration > sorted[j].duration
	})
	return sorted
}

type categoryDuration struct {
	category event.Category
	duration int64
}

func sortCategoriesByDuration(totals map[event.Category]int64) []categoryDuration {
	var sorted []categoryDuration
	for _, c := range event.Categories {
		if d, ok := totals[c]; ok {
			sorted = append(sorted, categoryDuration{category: c, duration: d})
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].duration > sorted[j].duration
	})
	return sorted
}
