// Package main provides the CLI entrypoint for karuta.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/audio"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/cardsui"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/config"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/game"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kimariji"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/stats"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/store"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/tui"
)

const (
	defaultMode    = "kana"
	defaultSamples = 10
	defaultRows    = 2
	defaultCols    = 4
	defaultWindow  = 20

	audioCacheLimit = 200
)

var (
	playMode    string
	playDataset string
	playSamples int
	playRows    int
	playCols    int
	playMuted   bool

	cardsMode    string
	cardsDataset string

	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "karuta",
		Short:         "TUI karuta memorization trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "card mode: kana or kanji")
	rootCmd.Flags().StringVar(&playDataset, "dataset", "", "path to a custom card CSV")
	rootCmd.Flags().IntVar(&playSamples, "samples", defaultSamples, "cards per game (0 = full deck)")
	rootCmd.Flags().IntVar(&playRows, "rows", defaultRows, "board rows")
	rootCmd.Flags().IntVar(&playCols, "cols", defaultCols, "board columns")
	rootCmd.Flags().BoolVar(&playMuted, "muted", false, "start muted with text reveal")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &playMode, fileCfg.Game.Mode)
	applyStringConfig(cmd, "dataset", &playDataset, fileCfg.Game.Dataset)
	applyIntConfig(cmd, "samples", &playSamples, fileCfg.Game.Samples)
	applyIntConfig(cmd, "rows", &playRows, fileCfg.Game.Rows)
	applyIntConfig(cmd, "cols", &playCols, fileCfg.Game.Cols)
	applyBoolConfig(cmd, "muted", &playMuted, fileCfg.Game.Muted)

	cfg := model.Config{
		Mode:    playMode,
		Dataset: playDataset,
		Samples: playSamples,
		Rows:    playRows,
		Cols:    playCols,
		Muted:   playMuted,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	datasetPath := resolveDatasetPath(cfg)
	pairs, err := dataset.LoadPairs(datasetPath)
	if err != nil {
		return datasetLoadError(cfg.Mode, datasetPath, err)
	}
	hints, err := dataset.LoadHints(config.DefaultHintsPath())
	if err != nil {
		logErrf("failed to load hint table: %v\n", err)
		hints = dataset.NewHintTable()
	}
	prefixes := prefixesByID(pairs)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	subset := samplePairs(pairs, cfg.Samples, rng)

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	session := game.NewSession(subset, cfg.Rows, cfg.Cols, rng, nil)
	cache := audio.NewCache(audio.Null{}, audioCacheLimit)

	model := tui.NewModel(cfg, session, st, cache, hints, prefixes)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Browse the deck with identifying prefixes",
		Args:  cobra.NoArgs,
		RunE:  runCardsCmd,
	}
	cmd.Flags().StringVar(&cardsMode, "mode", defaultMode, "card mode: kana or kanji")
	cmd.Flags().StringVar(&cardsDataset, "dataset", "", "path to a custom card CSV")
	return cmd
}

func runCardsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &cardsMode, fileCfg.Game.Mode)
	applyStringConfig(cmd, "dataset", &cardsDataset, fileCfg.Game.Dataset)
	if cardsMode != "kana" && cardsMode != "kanji" {
		return fmt.Errorf("--mode must be kana or kanji")
	}

	cfg := model.Config{Mode: cardsMode, Dataset: cardsDataset}
	datasetPath := resolveDatasetPath(cfg)
	pairs, err := dataset.LoadPairs(datasetPath)
	if err != nil {
		return datasetLoadError(cfg.Mode, datasetPath, err)
	}
	hints, err := dataset.LoadHints(config.DefaultHintsPath())
	if err != nil {
		logErrf("failed to load hint table: %v\n", err)
		hints = dataset.NewHintTable()
	}

	model := cardsui.NewModel(pairs, hints, prefixesByID(pairs))
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run cards TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show game stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (kana or kanji)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsWindow, "window", defaultWindow, "recent-game window for card stats")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsWindow < 0 {
		return fmt.Errorf("--window must be >= 0")
	}

	cfg := model.StatsConfig{
		Mode:   statsMode,
		Since:  sinceTime,
		Last:   statsLast,
		Window: statsWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if len(report.Games) == 0 {
		logErrln("no games recorded yet; play first: karuta")
		return nil
	}

	out := os.Stdout
	if err := stats.RenderSummary(out, report.Games); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderTrend(out, report.Games, cfg.Window, 0); err != nil {
		return fmt.Errorf("failed to render trend: %w", err)
	}
	aggs := report.CardAggsWindow
	if len(aggs) == 0 {
		aggs = report.CardAggsAll
	}
	if err := stats.RenderCardTable(out, aggs); err != nil {
		return fmt.Errorf("failed to render card table: %w", err)
	}
	return nil
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

// prefixesByID computes identifying prefixes across the full deck so a
// sampled game still shows deck-wide kimariji.
func prefixesByID(pairs []dataset.Pair) map[int]kimariji.Record {
	kamis := make([]string, len(pairs))
	for i, p := range pairs {
		kamis[i] = p.Kami
	}
	records := kimariji.ComputeRecords(kamis)
	byID := make(map[int]kimariji.Record, len(records))
	for i, rec := range records {
		byID[pairs[i].ID] = rec
	}
	return byID
}

// samplePairs picks n random pairs, or the whole deck when n is 0 or exceeds
// the deck size.
func samplePairs(pairs []dataset.Pair, n int, rng *rand.Rand) []dataset.Pair {
	if n <= 0 || n >= len(pairs) {
		return pairs
	}
	subset := make([]dataset.Pair, 0, n)
	for _, idx := range rng.Perm(len(pairs))[:n] {
		subset = append(subset, pairs[idx])
	}
	return subset
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
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
	return fmt.Sprintf(`# karuta configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# mode = %q         # Card mode: kana or kanji
# dataset = ""          # Path to a custom card CSV
# samples = %d          # Cards per game (0 = full deck)
# rows = %d             # Board rows
# cols = %d             # Board columns
# muted = false         # Start muted with text reveal
`,
		defaultMode,
		defaultSamples,
		defaultRows,
		defaultCols,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Mode != "kana" && cfg.Mode != "kanji" {
		return fmt.Errorf("--mode must be kana or kanji")
	}
	if cfg.Samples < 0 {
		return fmt.Errorf("--samples must be >= 0")
	}
	if cfg.Rows <= 0 {
		return fmt.Errorf("--rows must be > 0")
	}
	if cfg.Cols <= 0 {
		return fmt.Errorf("--cols must be > 0")
	}
	if cfg.Samples > 0 && cfg.Samples < cfg.Rows*cfg.Cols {
		return fmt.Errorf("--samples must fill the %dx%d board (need at least %d)", cfg.Rows, cfg.Cols, cfg.Rows*cfg.Cols)
	}
	return nil
}

func resolveDatasetPath(cfg model.Config) string {
	if cfg.Dataset != "" {
		return cfg.Dataset
	}
	return config.DatasetPathForMode(cfg.Mode)
}

func datasetLoadError(mode, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load card dataset: %v", err),
		fmt.Sprintf("expected dataset at: %s", path),
		fmt.Sprintf("mode %q needs a CSV with 上の句 and 下の句 columns", mode),
		"Place the bundled hyakunin isshu CSVs under that directory,",
		"or point --dataset at your own file.",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
