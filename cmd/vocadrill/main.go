// Package main provides the CLI entrypoint for vocadrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"vocadrill/internal/catalog"
	"vocadrill/internal/config"
	"vocadrill/internal/game"
	"vocadrill/internal/kv"
	"vocadrill/internal/model"
	"vocadrill/internal/progress"
	"vocadrill/internal/speech"
	"vocadrill/internal/stats"
	"vocadrill/internal/tui"
)

const defaultStatsWindow = 30

var (
	practiceDay    string
	practiceMode   string
	practiceReview bool
	practiceTimer  bool
	practiceSpeech bool
	practiceWord   string

	statsDay    string
	statsWindow int

	resetDay       string
	resetKeepWrong bool

	addDay           string
	addWord          string
	addMeaning       string
	addPronunciation string
	addExample       string
	addRemove        string

	completeDay   string
	completeWord  string
	completeAll   bool
	completeList  bool
	completeClear bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vocadrill",
		Short:         "TUI vocabulary typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDay, "day", "", "day to practice (default: day-select screen)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", "sequence", "word order: sequence or random")
	rootCmd.Flags().BoolVar(&practiceReview, "review", false, "practice only the day's wrong words")
	rootCmd.Flags().BoolVar(&practiceTimer, "timer", false, "enable the countdown timer")
	rootCmd.Flags().BoolVar(&practiceSpeech, "speech", true, "pronounce correct answers via system TTS")
	rootCmd.Flags().StringVar(&practiceWord, "word", "", "start the session at this word")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDaysCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newCompleteCmd())

	return rootCmd
}

// openStores opens the SQLite backend and layers every store over it.
type stores struct {
	kv        kv.Store
	progress  *progress.Store
	completed *progress.CompletedStore
	custom    *progress.CustomStore
	position  *progress.PositionStore
	loader    *catalog.Loader
}

func openStores() (*stores, error) {
	db, err := kv.OpenSQLite(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	custom := progress.NewCustom(db, logErrf)
	return &stores{
		kv:        db,
		progress:  progress.New(db, progress.WithLogf(logErrf)),
		completed: progress.NewCompleted(db, logErrf),
		custom:    custom,
		position:  progress.NewPosition(db),
		loader:    catalog.NewLoader(config.DefaultWordsDir(), custom),
	}, nil
}

func (s *stores) close() {
	if err := s.kv.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "day", &practiceDay, fileCfg.Practice.Day)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyBoolConfig(cmd, "timer", &practiceTimer, fileCfg.Practice.Timer)
	applyBoolConfig(cmd, "speech", &practiceSpeech, fileCfg.Practice.Speech)

	mode, ok := model.ParseMode(practiceMode)
	if !ok {
		return fmt.Errorf("--mode must be sequence or random, got %q", practiceMode)
	}
	if practiceReview && practiceDay == "" {
		return fmt.Errorf("--review requires --day")
	}

	tuning := resolveTuning(fileCfg.Tuning)
	cfg := model.Config{
		DayID:  practiceDay,
		Mode:   mode,
		Review: practiceReview,
		Timer:  practiceTimer,
		Speech: practiceSpeech,
		Word:   practiceWord,
		Tuning: tuning,
	}

	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	if _, err := st.loader.Manifest(ctx); err != nil {
		return err
	}
	if cfg.DayID != "" && cfg.Word != "" {
		if err := st.position.SetPendingTarget(ctx, cfg.DayID, cfg.Word); err != nil {
			logErrf("failed to record start word: %v\n", err)
		}
	}

	var speaker game.Speaker = speech.Null{}
	if cfg.Speech {
		if cmdSpeaker, ok := speech.NewCommand(logErrf); ok {
			speaker = cmdSpeaker
		}
	}

	engine := game.NewEngine(st.progress, speaker, tuning)
	if cfg.Timer {
		engine.ToggleTimer()
	}

	uiModel := tui.New(cfg, st.loader, st.progress, st.completed, st.position, engine)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveTuning overlays the [tuning] config table on the stock parameters.
func resolveTuning(tc config.TuningConfig) model.Tuning {
	tuning := model.DefaultTuning()
	if tc.ScoreBase != nil {
		tuning.ScoreBase = *tc.ScoreBase
	}
	if tc.StreakBonus != nil {
		tuning.StreakBonus = *tc.StreakBonus
	}
	if tc.AdvanceDelayMs != nil {
		tuning.AdvanceDelay = time.Duration(*tc.AdvanceDelayMs) * time.Millisecond
	}
	if tc.CountdownSeconds != nil {
		tuning.CountdownSeconds = *tc.CountdownSeconds
	}
	return tuning
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "List days with progress",
		Args:  cobra.NoArgs,
		RunE:  runDaysCmd,
	}
}

func runDaysCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	reports, err := collectReports(context.Background(), st, "")
	if err != nil {
		return err
	}
	return stats.RenderDayTable(cmd.OutOrStdout(), reports)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDay, "day", "", "show detail for one day")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "activity window in days")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if statsDay != "" {
		reports, err := collectReports(ctx, st, statsDay)
		if err != nil {
			return err
		}
		return stats.RenderDayDetail(out, reports[0])
	}

	reports, err := collectReports(ctx, st, "")
	if err != nil {
		return err
	}
	if err := stats.RenderDayTable(out, reports); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	return stats.RenderActivity(out, reports, statsWindow, stats.TerminalWidth(), time.Now())
}

// collectReports builds DayReports for every Day, or just the one requested.
func collectReports(ctx context.Context, st *stores, dayID string) ([]stats.DayReport, error) {
	var days []model.DayDescriptor
	if dayID != "" {
		day, err := st.loader.Day(ctx, dayID)
		if err != nil {
			return nil, err
		}
		days = []model.DayDescriptor{day}
	} else {
		manifest, err := st.loader.Manifest(ctx)
		if err != nil {
			return nil, err
		}
		days = manifest
	}

	reports := make([]stats.DayReport, 0, len(days))
	for _, d := range days {
		words := d.Total
		if loaded, err := st.loader.LoadWords(ctx, d.ID); err == nil {
			words = len(loaded)
		}
		reports = append(reports, stats.DayReport{
			Day:      d,
			Stat:     st.progress.Get(ctx, d.ID),
			Words:    words,
			Mastered: st.completed.Count(ctx, d.ID),
		})
	}
	return reports, nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a day's progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetDay, "day", "", "day to reset (required)")
	cmd.Flags().BoolVar(&resetKeepWrong, "keep-wrong", false, "keep the wrong-word set")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if resetDay == "" {
		return fmt.Errorf("--day is required")
	}
	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	if _, err := st.loader.Day(ctx, resetDay); err != nil {
		return err
	}
	if err := st.progress.ResetDay(ctx, resetDay, resetKeepWrong); err != nil {
		return fmt.Errorf("failed to reset day: %w", err)
	}
	st.position.ClearLastWord(ctx, resetDay)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reset %s (completion history kept)\n", resetDay)
	return err
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or remove custom words",
		Args:  cobra.NoArgs,
		RunE:  runAddCmd,
	}
	cmd.Flags().StringVar(&addDay, "day", "", "day to attach the word to (required)")
	cmd.Flags().StringVar(&addWord, "word", "", "word to add")
	cmd.Flags().StringVar(&addMeaning, "meaning", "", "meaning of the word")
	cmd.Flags().StringVar(&addPronunciation, "pronunciation", "", "pronunciation hint")
	cmd.Flags().StringVar(&addExample, "example", "", "example sentence")
	cmd.Flags().StringVar(&addRemove, "remove", "", "custom word to remove")
	return cmd
}

func runAddCmd(cmd *cobra.Command, _ []string) error {
	if addDay == "" {
		return fmt.Errorf("--day is required")
	}
	if addWord == "" && addRemove == "" {
		return fmt.Errorf("one of --word or --remove is required")
	}
	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	if _, err := st.loader.Day(ctx, addDay); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if addRemove != "" {
		if err := st.custom.Remove(ctx, addDay, addRemove); err != nil {
			return fmt.Errorf("failed to remove custom word: %w", err)
		}
		st.loader.Invalidate(addDay)
		if _, err := fmt.Fprintf(out, "Removed %q from %s\n", addRemove, addDay); err != nil {
			return err
		}
	}
	if addWord != "" {
		word := model.Word{
			Word:          addWord,
			Meaning:       addMeaning,
			Pronunciation: addPronunciation,
			Example:       addExample,
		}
		updated, err := st.custom.Update(ctx, addDay, addWord, word)
		if err != nil {
			return fmt.Errorf("failed to update custom word: %w", err)
		}
		verb := "Updated"
		if !updated {
			if err := st.custom.Add(ctx, addDay, word); err != nil {
				return fmt.Errorf("failed to add custom word: %w", err)
			}
			verb = "Added"
		}
		st.loader.Invalidate(addDay)
		if _, err := fmt.Fprintf(out, "%s %q in %s\n", verb, addWord, addDay); err != nil {
			return err
		}
	}
	return nil
}

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Toggle or list mastered words",
		Args:  cobra.NoArgs,
		RunE:  runCompleteCmd,
	}
	cmd.Flags().StringVar(&completeDay, "day", "", "day to operate on (required)")
	cmd.Flags().StringVar(&completeWord, "word", "", "word to toggle mastered")
	cmd.Flags().BoolVar(&completeAll, "all", false, "mark every word in the day mastered")
	cmd.Flags().BoolVar(&completeList, "list", false, "list mastered words")
	cmd.Flags().BoolVar(&completeClear, "clear", false, "clear every mastered flag")
	return cmd
}

func runCompleteCmd(cmd *cobra.Command, _ []string) error {
	if completeDay == "" {
		return fmt.Errorf("--day is required")
	}
	if completeWord == "" && !completeAll && !completeList && !completeClear {
		return fmt.Errorf("one of --word, --all, --list, or --clear is required")
	}
	if completeAll && completeClear {
		return fmt.Errorf("--all and --clear are mutually exclusive")
	}
	st, err := openStores()
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	if _, err := st.loader.Day(ctx, completeDay); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if completeClear {
		if err := st.completed.Clear(ctx, completeDay); err != nil {
			return fmt.Errorf("failed to clear mastered words: %w", err)
		}
		if _, err := fmt.Fprintf(out, "Cleared mastered words for %s\n", completeDay); err != nil {
			return err
		}
	}
	if completeAll {
		words, err := st.loader.LoadWords(ctx, completeDay)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(words))
		for _, w := range words {
			names = append(names, w.Word.Word)
		}
		if err := st.completed.MarkAll(ctx, completeDay, names); err != nil {
			return fmt.Errorf("failed to mark words mastered: %w", err)
		}
		if _, err := fmt.Fprintf(out, "Marked %d word(s) mastered in %s\n", len(names), completeDay); err != nil {
			return err
		}
	}
	if completeWord != "" {
		nowMastered, err := st.completed.Toggle(ctx, completeDay, completeWord)
		if err != nil {
			return fmt.Errorf("failed to toggle mastered flag: %w", err)
		}
		state := "mastered"
		if !nowMastered {
			state = "practicing again"
		}
		if _, err := fmt.Fprintf(out, "%q is now %s\n", completeWord, state); err != nil {
			return err
		}
	}
	if completeList {
		words := st.completed.List(ctx, completeDay)
		if len(words) == 0 {
			_, err := fmt.Fprintln(out, "No mastered words.")
			return err
		}
		for _, w := range words {
			if _, err := fmt.Fprintln(out, w); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	tuning := model.DefaultTuning()
	return fmt.Sprintf(`# vocadrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# day = "d01"              # Day to open directly
# mode = "sequence"        # Word order: sequence or random
# timer = false            # Countdown timer on by default
# speech = true            # Pronounce correct answers

[tuning]
# score-base = %d          # Points for a correct answer
# streak-bonus = %d        # Extra points per streak step
# advance-delay-ms = %d    # Pause before auto-advance after a correct answer
# countdown-seconds = %d   # Countdown budget per session
`,
		tuning.ScoreBase,
		tuning.StreakBonus,
		tuning.AdvanceDelay.Milliseconds(),
		tuning.CountdownSeconds,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
