package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sgrant/omnitrace/internal/analytics"
	"github.com/sgrant/omnitrace/internal/brain"
	"github.com/sgrant/omnitrace/internal/config"
	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/export"
	"github.com/sgrant/omnitrace/internal/forensic"
	"github.com/sgrant/omnitrace/internal/instrument"
	"github.com/sgrant/omnitrace/internal/merge"
	"github.com/sgrant/omnitrace/internal/search"
	"github.com/sgrant/omnitrace/internal/store"
	"github.com/sgrant/omnitrace/internal/tracker"
	"github.com/sgrant/omnitrace/internal/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	instrument.Setup(cfg.Logging.Level)

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "log":
		cmdLog(ctx, cfg, args)
	case "stats":
		cmdStats(ctx, cfg, args)
	case "score":
		cmdScore(ctx, cfg, args)
	case "heatmap":
		cmdHeatmap(ctx, cfg, args)
	case "timeline":
		cmdTimeline(ctx, cfg, args)
	case "summary":
		cmdSummary(ctx, cfg, args)
	case "titles":
		cmdTitles(ctx, cfg, args)
	case "insights":
		cmdInsights(ctx, cfg, args)
	case "ask":
		cmdAsk(ctx, cfg, args)
	case "search":
		cmdSearch(ctx, cfg, args)
	case "export":
		cmdExport(ctx, cfg, args)
	case "wipe":
		cmdWipe(ctx, cfg, args)
	case "track":
		cmdTrack(cfg, args)
	case "watch":
		cmdWatch(cfg, args)

	case "version":
		fmt.Printf("omni v%s (omnitrace)\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func cmdLog(ctx context.Context, cfg config.Config, args []string) {
	title := flagValue(args, "--title")
	if title == "" {
		fatal("usage: omni log --title <text> [--category <name>] [--duration <minutes>] [--note <text>]")
	}

	category := event.ParseCategory(flagValue(args, "--category"))
	minutes := 0
	if v := flagValue(args, "--duration"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 {
			fatal("invalid --duration %q", v)
		}
		minutes = m
	}

	st := openStore(cfg)
	defer st.Close()

	e := event.NewManual(title, category, time.Now(), time.Duration(minutes)*time.Minute, flagValue(args, "--note"))
	if err := st.AppendEvent(ctx, e); err != nil {
		fatal("log event: %v", err)
	}
	fmt.Printf("logged: %s (%s)\n", e.Title, e.Category)
}

func cmdStats(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	m := analytics.ComputeMetrics(events)

	fmt.Printf("Active time:      %s\n", fmtDuration(m.TotalActiveTime))
	fmt.Printf("Background time:  %s\n", fmtDuration(m.TotalBackgroundTime))
	fmt.Printf("Idle time:        %s\n", fmtDuration(m.TotalIdleTime))
	fmt.Printf("Context switches: %d\n", m.ContextSwitches)
	fmt.Printf("Focus density:    %.2f\n", m.FocusDensity)

	fmt.Println("\nBy category:")
	for _, b := range analytics.ComputeCategoryBreakdown(events) {
		fmt.Printf("  %-12s %8s  %5.1f%%\n", b.Category, fmtDuration(b.Duration), b.Percentage)
	}
}

func cmdScore(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	score := analytics.ComputeFocusScore(events)

	if !score.HasEnoughData {
		fmt.Println("Not enough data yet for a focus score.")
		return
	}
	fmt.Printf("Focus score: %d (%s)\n", score.Score, score.Label)
	for _, r := range score.Reasons {
		fmt.Printf("  - %s\n", r)
	}
}

func cmdHeatmap(ctx context.Context, cfg config.Config, args []string) {
	bins := 24
	if v := flagValue(args, "--bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fatal("invalid --bins %q", v)
		}
		bins = n
	}

	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	start, end, ok := scopeOf(cfg, args).TimeRange(time.Now())
	if !ok {
		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return
		}
		sorted := event.SortedByTime(events)
		start, end = sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp+1
	}

	for _, bin := range analytics.GenerateHeatmap(events, start, end, bins) {
		bar := strings.Repeat("█", int(bin.Intensity*20))
		fmt.Printf("%s  %-20s %.2f\n", time.UnixMilli(bin.Timestamp).Format("15:04"), bar, bin.Intensity)
	}
}

func cmdTimeline(ctx context.Context, cfg config.Config, args []string) {
	mode := merge.ParseMode(cfg.CognitiveMode)
	if v := flagValue(args, "--mode"); v != "" {
		mode = merge.ParseMode(v)
	}

	st := openStore(cfg)
	defer st.Close()

	start, end, ok := scopeOf(cfg, args).TimeRange(time.Now())
	if !ok {
		events, err := st.AllEvents(ctx)
		if err != nil {
			fatal("read events: %v", err)
		}
		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return
		}
		sorted := event.SortedByTime(events)
		start, end = sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp+1
	}

	rec, err := forensic.Reconstruct(ctx, st, start, end, mode)
	if err != nil {
		fatal("reconstruct: %v", err)
	}

	fmt.Printf("%d events, %d segments, %d merged, %d gaps\n\n",
		len(rec.RawEvents), len(rec.Segments), len(rec.MergedSegments), len(rec.Gaps))

	for _, m := range rec.MergedSegments {
		fmt.Printf("%s - %s  %-22s %s (%s)\n",
			time.UnixMilli(m.StartTime).Format("15:04"),
			time.UnixMilli(m.EndTime).Format("15:04"),
			m.Label, m.Category, fmtDuration(m.Duration()))
	}
	for _, g := range rec.Gaps {
		fmt.Printf("%s - %s  [no data]\n",
			time.UnixMilli(g.Start).Format("15:04"),
			time.UnixMilli(g.End).Format("15:04"))
	}
}

func cmdSummary(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	sum := analytics.GenerateDailySummary(events)

	if !sum.HasEnoughData {
		fmt.Println("Not enough data yet for a daily summary.")
		return
	}
	for _, s := range sum.Insights {
		fmt.Println("• " + s)
	}
}

func cmdTitles(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	result := analytics.ComputeTitles(events)

	if len(result.EarnedTitles) == 0 {
		fmt.Println("No titles earned yet.")
		return
	}
	for _, t := range result.EarnedTitles {
		fmt.Printf("🏆 %s — %s\n", t, result.Reasons[t])
	}
}

func cmdInsights(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	events := loadScoped(ctx, st, cfg, args)
	for _, ins := range analytics.ComputeInsights(events) {
		fmt.Printf("%s: %s\n  %s\n", ins.Title, ins.Value, ins.Definition)
	}
	if drift := analytics.DetectCognitiveDrift(events); drift != nil {
		fmt.Printf("\nDrift (%s confidence): %s\n", drift.Confidence, drift.Message)
	}
}

func cmdAsk(ctx context.Context, cfg config.Config, args []string) {
	query := positional(args)
	if query == "" {
		fatal("usage: omni ask \"<question>\" [--mode explain|analyze|coach|silent] [--scope today|week|all]")
	}

	mode := brain.ParseMode(cfg.IntelligenceMode)
	if v := flagValue(args, "--mode"); v != "" {
		mode = brain.ParseMode(v)
	}

	st := openStore(cfg)
	defer st.Close()

	events, err := scopeOf(cfg, args).LoadEvents(ctx, st, time.Now())
	if err != nil {
		fatal("read events: %v", err)
	}

	resp := brain.Ask(query, events, mode)
	fmt.Println(resp.Text)
	if len(resp.SuggestedFollowUps) > 0 {
		fmt.Println("\nYou could also ask:")
		for _, s := range resp.SuggestedFollowUps {
			fmt.Println("  • " + s)
		}
	}
}

func cmdSearch(ctx context.Context, cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	var f search.Filters

	if name := flagValue(args, "--preset"); name != "" {
		found := false
		for _, p := range search.Presets(time.Now()) {
			if strings.EqualFold(p.Name, name) {
				f = p.Filters
				found = true
				break
			}
		}
		if !found {
			fmt.Fprintln(os.Stderr, "unknown preset; available:")
			for _, p := range search.Presets(time.Now()) {
				fmt.Fprintf(os.Stderr, "  %-20s %s\n", p.Name, p.Description)
			}
			os.Exit(1)
		}
	} else {
		f.Keyword = flagValue(args, "--keyword")
		f.Category = event.Category(flagValue(args, "--category"))
		f.Confidence = event.Confidence(flagValue(args, "--confidence"))
		if v := flagValue(args, "--min-duration"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil {
				fatal("invalid --min-duration %q", v)
			}
			f.MinDuration = int64(m) * 60 * 1000
			f.HasMinDuration = true
		}
		if start, end, ok := scopeOf(cfg, args).TimeRange(time.Now()); ok {
			f.StartTime, f.EndTime, f.HasRange = start, end, true
		}
	}

	results, err := search.Run(ctx, st, f)
	if err != nil {
		fatal("search: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No matching events.")
		return
	}
	for _, e := range results {
		title := e.Title
		if title == "" {
			title = string(e.Type)
		}
		fmt.Printf("%s  %-28s %s\n", time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04"), title, e.Category)
	}
}

func cmdExport(ctx context.Context, cfg config.Config, args []string) {
	opts := export.Options{
		Format:   export.ParseFormat(flagValue(args, "--format")),
		Compress: cfg.Export.Compress || hasFlag(args, "--compress"),
	}

	dest := flagValue(args, "--out")
	if dest == "" {
		dest = export.Path(opts, time.Now())
	}

	st := openStore(cfg)
	defer st.Close()

	if err := export.Run(ctx, st, dest, opts, time.Now()); err != nil {
		fatal("export: %v", err)
	}
	fmt.Printf("exported: %s\n", dest)
}

func cmdWipe(ctx context.Context, cfg config.Config, args []string) {
	if !hasFlag(args, "--yes") {
		fatal("wipe deletes all local data permanently; re-run with --yes to confirm")
	}

	st := openStore(cfg)
	defer st.Close()

	if err := st.Wipe(ctx); err != nil {
		fatal("wipe: %v", err)
	}
	fmt.Println("all local data deleted")
}

// cmdTrack runs a foreground tracking session: any unclosed previous
// session is recovered, then a new session opens and stdin lines count as
// activity signals against the idle threshold. Ctrl-C ends the session.
func cmdTrack(cfg config.Config, args []string) {
	timeout := time.Duration(cfg.IdleTimeoutSeconds) * time.Second
	if v := flagValue(args, "--idle-timeout"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 1 {
			fatal("invalid --idle-timeout %q", v)
		}
		timeout = time.Duration(s) * time.Second
	}

	st := openStore(cfg)
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if recovered, err := tracker.Recover(ctx, st, nil); err != nil {
		fatal("recover session: %v", err)
	} else if recovered != nil {
		fmt.Printf("recovered unclosed session %s\n", recovered.ID)
	}

	sess := tracker.NewSessionTracker(st, nil)
	if err := sess.Start(ctx); err != nil {
		fatal("start session: %v", err)
	}
	fmt.Printf("tracking session %s (press Enter to signal activity, Ctrl-C to stop)\n", sess.Current().ID)

	idle := tracker.NewIdleDetector(st, timeout, nil)

	activity := make(chan struct{})
	go func() {
		defer close(activity)
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			select {
			case activity <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := sess.End(context.Background()); err != nil {
				fatal("end session: %v", err)
			}
			fmt.Println("session ended")
			return
		case <-activity:
			if err := idle.Touch(ctx); err != nil {
				fatal("record activity: %v", err)
			}
		case <-tick.C:
			wasIdle := idle.IsIdle()
			if err := idle.Tick(ctx); err != nil {
				fatal("idle check: %v", err)
			}
			if !wasIdle && idle.IsIdle() {
				fmt.Printf("[%s] idle\n", time.Now().Format("15:04:05"))
			}
		}
	}
}

func cmdWatch(cfg config.Config, args []string) {
	st := openStore(cfg)
	defer st.Close()

	w, err := watch.New(st.Path(), 0)
	if err != nil {
		fatal("watch: %v", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh := func() {
		events := loadScoped(ctx, st, cfg, args)
		score := analytics.ComputeFocusScore(events)
		if score.HasEnoughData {
			fmt.Printf("[%s] focus score: %d (%s)\n", time.Now().Format("15:04:05"), score.Score, score.Label)
		} else {
			fmt.Printf("[%s] collecting data (%d events)\n", time.Now().Format("15:04:05"), len(events))
		}
	}
	refresh()

	if err := w.Run(ctx, refresh); err != nil && err != context.Canceled {
		fatal("watch: %v", err)
	}
}

func openStore(cfg config.Config) *store.Store {
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		fatal("open store: %v", err)
	}
	return st
}

func scopeOf(cfg config.Config, args []string) brain.Scope {
	if v := flagValue(args, "--scope"); v != "" {
		return brain.ParseScope(v)
	}
	return brain.ParseScope(cfg.Scope)
}

func loadScoped(ctx context.Context, st *store.Store, cfg config.Config, args []string) []event.Event {
	events, err := scopeOf(cfg, args).LoadEvents(ctx, st, time.Now())
	if err != nil {
		fatal("read events: %v", err)
	}
	return events
}

func fmtDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func usage() {
	fmt.Fprintf(os.Stderr, `omni v%s — local-only activity intelligence

Usage:
  omni log --title <text> [--category <name>] [--duration <min>] [--note <text>]
  omni stats [--scope today|week|all]       Time metrics and category breakdown
  omni score [--scope ...]                  Focus score with reasons
  omni heatmap [--bins <n>] [--scope ...]   Productivity intensity heatmap
  omni timeline [--mode <m>] [--scope ...]  Forensic timeline with gaps
                                            (mode: focus|flow|recovery|analysis)
  omni summary [--scope ...]                Daily summary sentences
  omni titles [--scope ...]                 Earned achievement titles
  omni insights [--scope ...]               Headline insights and drift detection
  omni ask "<question>" [--mode <m>]        Ask the built-in assistant
  omni search [--keyword ...] [--preset ...] Search the event log
  omni export [--format json|csv] [--compress] [--out <path>]
  omni wipe --yes                           Delete all local data
  omni track [--idle-timeout <sec>]         Run a foreground tracking session
  omni watch                                Live focus score on store changes
  omni version                              Print version
  omni help                                 Show this help

All data stays on this machine. Configuration: ~/.config/omnitrace/config.toml
`, version)
}

func positional(args []string) string {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "--") {
			i++ // skip the flag's value
			continue
		}
		return args[i]
	}
	return ""
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "omni: "+format+"\n", args...)
	os.Exit(1)
}
