// Package main provides the CLI entrypoint for warmup.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/warmup/internal/config"
	"github.com/verte-zerg/warmup/internal/game"
	"github.com/verte-zerg/warmup/internal/generator"
	"github.com/verte-zerg/warmup/internal/model"
	"github.com/verte-zerg/warmup/internal/remote"
	"github.com/verte-zerg/warmup/internal/stats"
	"github.com/verte-zerg/warmup/internal/statsui"
	"github.com/verte-zerg/warmup/internal/store"
	"github.com/verte-zerg/warmup/internal/tui"
	"github.com/verte-zerg/warmup/internal/web"
)

const (
	defaultDifficulty  = 1
	defaultOperation   = "subtract"
	defaultTimeLimit   = 5.0
	defaultWeakTop     = 3
	defaultWeakFactor  = 3.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 10

	defaultWebHost = "0.0.0.0"
	defaultWebPort = "8080"
	defaultSSHHost = "::"
	defaultSSHPort = "2222"
)

var (
	playDifficulty int
	playOperation  string
	playTimeLimit  float64
	playFocusWeak  bool
	playWeakTop    int
	playWeakFactor float64
	playWeakWindow int
	playNoSave     bool

	statsOperation   string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	serveHost string
	servePort string

	sshHost    string
	sshPort    string
	sshHostKey string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "warmup",
		Short:         "Mental arithmetic warm-up drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playDifficulty, "difficulty", defaultDifficulty, "amount added or subtracted (1-9)")
	rootCmd.Flags().StringVar(&playOperation, "operation", defaultOperation, "add or subtract")
	rootCmd.Flags().Float64Var(&playTimeLimit, "time-limit", defaultTimeLimit, "seconds per challenge (1-10)")
	rootCmd.Flags().BoolVar(&playFocusWeak, "focus-weak", false, "bias digits toward weak ones")
	rootCmd.Flags().IntVar(&playWeakTop, "weak-top", defaultWeakTop, "number of weak digits to focus on")
	rootCmd.Flags().Float64Var(&playWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak digits")
	rootCmd.Flags().IntVar(&playWeakWindow, "weak-window", defaultWeakWindow, "number of recent levels to compute weak digits")
	rootCmd.Flags().BoolVar(&playNoSave, "no-save", false, "do not record completed levels")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSSHCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "difficulty", &playDifficulty, fileCfg.Game.Difficulty)
	applyStringConfig(cmd, "operation", &playOperation, fileCfg.Game.Operation)
	applyFloatConfig(cmd, "time-limit", &playTimeLimit, fileCfg.Game.TimeLimit)
	applyBoolConfig(cmd, "focus-weak", &playFocusWeak, fileCfg.Game.FocusWeak)
	applyIntConfig(cmd, "weak-top", &playWeakTop, fileCfg.Game.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &playWeakFactor, fileCfg.Game.WeakFactor)
	applyIntConfig(cmd, "weak-window", &playWeakWindow, fileCfg.Game.WeakWindow)
	applyBoolConfig(cmd, "no-save", &playNoSave, fileCfg.Game.NoSave)

	cfg := model.Config{
		Difficulty: playDifficulty,
		Operation:  playOperation,
		TimeLimit:  playTimeLimit,
		FocusWeak:  playFocusWeak,
		WeakTop:    playWeakTop,
		WeakFactor: playWeakFactor,
		WeakWindow: playWeakWindow,
		NoSave:     playNoSave,
	}
	settings, err := validateConfig(cfg)
	if err != nil {
		return err
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

	gen := generator.New()
	var src game.DigitSource = gen
	opts := []tui.Option{tui.WithStore(st)}
	if cfg.FocusWeak {
		weakSet := map[int]struct{}{}
		weakNoticePrinted := false
		aggs, err := st.GetWeakDigits(context.Background(), cfg.WeakWindow, settings.Operation.String())
		if err != nil {
			logErrf("failed to load weak digits: %v\n", err)
		} else {
			weakSet = stats.SelectWeakDigits(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-digit focus yet; using uniform digits")
				weakNoticePrinted = true
			}
		}
		focus := generator.NewFocus(gen, weakSet, cfg.WeakFactor)
		src = focus
		opts = append(opts, tui.WithFocus(focus, weakNoticePrinted))
	}

	engine := game.New(settings, src)
	program := tea.NewProgram(tui.NewModel(cfg, engine, opts...), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
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
	if err := writeConfigTemplate(path); err != nil {
		return err
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

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsOperation, "operation", "", "operation filter (add or subtract)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N levels")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive viewer")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig(statsOperation, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printStats(cmd.Context(), cmd.OutOrStdout(), st, cfg, stats.TerminalWidth())
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig(operation, since string, last, window int) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	if operation != "" {
		op, err := game.ParseOperation(operation)
		if err != nil {
			return cfg, fmt.Errorf("invalid --operation value: %w", err)
		}
		cfg.Operation = op.String()
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return cfg, fmt.Errorf("--curve-window must be >= 1")
	}
	cfg.Last = last
	cfg.CurveWindow = window
	return cfg, nil
}

func printStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig, width int) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Levels); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if len(report.Levels) == 0 {
		return nil
	}
	if err := stats.RenderScoreChart(w, stats.ScoreSeries(report.Levels, cfg.CurveWindow), width); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := stats.RenderDigitTable(w, report.DigitAggsWindow); err != nil {
		return fmt.Errorf("failed to write digit table: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser edition",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveHost, "host", "", "listen host (default $WARMUP_WEB_HOST or "+defaultWebHost+")")
	cmd.Flags().StringVar(&servePort, "port", "", "listen port (default $WARMUP_WEB_PORT or "+defaultWebPort+")")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	host := resolveSetting(cmd, "host", serveHost, "WARMUP_WEB_HOST", fileCfg.Server.WebHost, defaultWebHost)
	port := resolveSetting(cmd, "port", servePort, "WARMUP_WEB_PORT", fileCfg.Server.WebPort, defaultWebPort)

	logger := newServerLogger()
	srv, err := web.New(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, net.JoinHostPort(host, port))
}

func newSSHCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal drill over SSH",
		Args:  cobra.NoArgs,
		RunE:  runSSHCmd,
	}
	cmd.Flags().StringVar(&sshHost, "host", "", "listen host (default $WARMUP_SSH_HOST or "+defaultSSHHost+")")
	cmd.Flags().StringVar(&sshPort, "port", "", "listen port (default $WARMUP_SSH_PORT or "+defaultSSHPort+")")
	cmd.Flags().StringVar(&sshHostKey, "host-key", "", "host key path (default $WARMUP_SSH_HOST_KEY or data dir)")
	return cmd
}

func runSSHCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	settings, err := sessionSettings(fileCfg.Game)
	if err != nil {
		return err
	}
	cfg := remote.Config{
		Host:        resolveSetting(cmd, "host", sshHost, "WARMUP_SSH_HOST", fileCfg.Server.SSHHost, defaultSSHHost),
		Port:        resolveSetting(cmd, "port", sshPort, "WARMUP_SSH_PORT", fileCfg.Server.SSHPort, defaultSSHPort),
		HostKeyPath: resolveSetting(cmd, "host-key", sshHostKey, "WARMUP_SSH_HOST_KEY", fileCfg.Server.SSHHostKey, config.DefaultHostKeyPath()),
		Settings:    settings,
	}

	logger := newServerLogger()
	srv, err := remote.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// sessionSettings builds the starting settings for SSH sessions from the
// [game] table. Weak-digit and save options do not apply to remote play.
func sessionSettings(gameCfg config.GameConfig) (game.Settings, error) {
	cfg := model.Config{
		Difficulty: defaultDifficulty,
		Operation:  defaultOperation,
		TimeLimit:  defaultTimeLimit,
	}
	if gameCfg.Difficulty != nil {
		cfg.Difficulty = *gameCfg.Difficulty
	}
	if gameCfg.Operation != nil {
		cfg.Operation = *gameCfg.Operation
	}
	if gameCfg.TimeLimit != nil {
		cfg.TimeLimit = *gameCfg.TimeLimit
	}
	settings, err := validateConfig(cfg)
	if err != nil {
		return game.Settings{}, fmt.Errorf("config [game]: %w", err)
	}
	return settings, nil
}

func loadServerConfig() (config.FileConfig, error) {
	if err := config.LoadEnv(".env"); err != nil {
		return config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

// resolveSetting picks the flag if set, then the environment, then the
// config file, then fallback.
func resolveSetting(cmd *cobra.Command, flag, flagValue, envKey string, fileValue *string, fallback string) string {
	if cmd.Flags().Changed(flag) {
		return flagValue
	}
	if fileValue != nil {
		fallback = *fileValue
	}
	return config.GetEnv(envKey, fallback)
}

func newServerLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "warmup",
	})
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
	return fmt.Sprintf(`# warmup configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# difficulty = %d          # Amount added or subtracted (1-9)
# operation = %q   # "add" or "subtract"
# time-limit = %.1f        # Seconds per challenge (1-10)
# focus-weak = false      # Bias digits toward weak ones
# weak-top = %d            # Number of weak digits to focus on
# weak-factor = %.1f       # Weight factor for weak digits
# weak-window = %d        # Number of recent levels to compute weak digits
# no-save = false         # Do not record completed levels

[server]
# web-host = %q
# web-port = %q
# ssh-host = %q
# ssh-port = %q
# ssh-host-key = ""       # Defaults to the data directory
`,
		defaultDifficulty,
		defaultOperation,
		defaultTimeLimit,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultWebHost,
		defaultWebPort,
		defaultSSHHost,
		defaultSSHPort,
	)
}

// validateConfig checks cfg and converts it to starting game settings.
func validateConfig(cfg model.Config) (game.Settings, error) {
	var settings game.Settings
	if cfg.Difficulty < game.MinDifficulty || cfg.Difficulty > game.MaxDifficulty {
		return settings, fmt.Errorf("--difficulty must be between %d and %d", game.MinDifficulty, game.MaxDifficulty)
	}
	op, err := game.ParseOperation(cfg.Operation)
	if err != nil {
		return settings, fmt.Errorf("--operation must be add or subtract")
	}
	if cfg.TimeLimit < game.MinTimeLimit || cfg.TimeLimit > game.MaxTimeLimit {
		return settings, fmt.Errorf("--time-limit must be between %.0f and %.0f", game.MinTimeLimit, game.MaxTimeLimit)
	}
	if cfg.WeakTop < 0 {
		return settings, fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return settings, fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return settings, fmt.Errorf("--weak-window must be >= 0")
	}
	return game.Settings{Difficulty: cfg.Difficulty, Operation: op, TimeLimit: cfg.TimeLimit}, nil
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
