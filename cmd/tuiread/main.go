// Package main provides the CLI entrypoint for tuiread.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/document"
	"github.com/verte-zerg/tuiread/internal/logger"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/stats"
	"github.com/verte-zerg/tuiread/internal/statsui"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/tui"
)

const (
	defaultCurveWindow = 10
	defaultLogLevel    = "info"
)

var (
	readerPace       float64
	readerTopSize    int
	readerBottomSize int
	readerColor      string
	logLevel         string

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	extractWords bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultSettings()
	rootCmd := &cobra.Command{
		Use:           "tuiread [file]",
		Short:         "Terminal speed reader for PDF and text files",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReaderCmd,
	}

	rootCmd.Flags().Float64Var(&readerPace, "pace", defaults.Pace, "words per second (0.1-2.0)")
	rootCmd.Flags().IntVar(&readerTopSize, "top-size", defaults.TopFontSize, "font size of the current word")
	rootCmd.Flags().IntVar(&readerBottomSize, "bottom-size", defaults.BottomFontSize, "font size of the sentence panel")
	rootCmd.Flags().StringVar(&readerColor, "color", config.FormatColor(defaults.TextColor), "text color (RRGGBB or r,g,b,a)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExtractCmd())

	return rootCmd
}

func runReaderCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	closeLog, err := setupLogging(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeQuietly(closeLog, "log file")

	settings, err := readerSettings(cmd, fileCfg)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
	}

	st := openReaderStore(config.DefaultDBPath())
	if st != nil {
		defer closeQuietly(st, "db")
	}

	m := tui.NewModel(tui.Options{
		Settings: settings,
		Path:     path,
		Store:    st,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if s := m.Statistics(); s.Sessions > 0 {
		logErrf("Reading statistics: %s (%.1f wpm)\n", s, s.WordsPerMinute())
	}
	return nil
}

// openReaderStore opens the session history. Reading goes on without it, so a
// failure is logged and nil is returned.
func openReaderStore(path string) *store.Store {
	st, err := store.Open(path)
	if err != nil {
		log := logger.WithComponent("store")
		log.Error().Err(err).Str("path", path).Msg("failed to open db; sessions will not be saved")
		logErrf("Session history disabled: %v\n", err)
		return nil
	}
	return st
}

// readerSettings merges flags over the config file and validates the result.
func readerSettings(cmd *cobra.Command, fileCfg config.FileConfig) (model.Settings, error) {
	applyFloatConfig(cmd, "pace", &readerPace, fileCfg.Reader.Pace)
	applyIntConfig(cmd, "top-size", &readerTopSize, fileCfg.Reader.TopFontSize)
	applyIntConfig(cmd, "bottom-size", &readerBottomSize, fileCfg.Reader.BottomFontSize)
	applyStringConfig(cmd, "color", &readerColor, fileCfg.Reader.Color)

	settings, err := config.ParseSettings(model.DefaultSettings(), config.SettingsInput{
		Pace:           strconv.FormatFloat(readerPace, 'f', -1, 64),
		TopFontSize:    strconv.Itoa(readerTopSize),
		BottomFontSize: strconv.Itoa(readerBottomSize),
		Color:          readerColor,
	})
	if err != nil {
		var invalid *config.InvalidSettingsInputError
		if errors.As(err, &invalid) {
			return model.Settings{}, fmt.Errorf("--%s: %w", flagForField(invalid.Field), err)
		}
		return model.Settings{}, err
	}
	return settings, nil
}

func flagForField(field string) string {
	switch field {
	case "top font size":
		return "top-size"
	case "bottom font size":
		return "bottom-size"
	default:
		return field
	}
}

func setupLogging(cmd *cobra.Command, fileCfg config.FileConfig) (io.Closer, error) {
	cfg := logger.DefaultConfig(config.DefaultLogPath())
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	cfg.Level = logLevel
	if fileCfg.Log.File != nil {
		cfg.Path = *fileCfg.Log.File
	}
	closer, err := logger.Setup(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return closer, nil
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st, "db")

	if statsPlain {
		return writePlainReport(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig(since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{Since: sinceTime, Last: last, CurveWindow: window}, nil
}

func writePlainReport(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderDocumentTable(w, report.DocumentsAll); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text the reader would show",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtractCmd,
	}
	cmd.Flags().BoolVar(&extractWords, "words", false, "print one word per line")
	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := document.Load(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if extractWords {
		for _, word := range doc.Words {
			if _, err := fmt.Fprintln(out, word); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	} else if _, err := fmt.Fprintln(out, doc.Text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logErrf("%s: %d pages, %d words\n", doc.Name(), doc.Pages, len(doc.Words))
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := model.DefaultSettings()
	return fmt.Sprintf(`# tuiread configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# pace = %.1f              # Words per second (0.1-2.0)
# top-size = %d            # Font size of the current word
# bottom-size = %d         # Font size of the sentence panel
# color = %q    # Text color (RRGGBB or r,g,b,a)

[log]
# level = %q           # trace, debug, info, warn, error
# file = %q
`,
		defaults.Pace,
		defaults.TopFontSize,
		defaults.BottomFontSize,
		config.FormatColor(defaults.TextColor),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
