package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/afuente/examly/internal/achievements"
	"github.com/afuente/examly/internal/config"
	"github.com/afuente/examly/internal/daily"
	"github.com/afuente/examly/internal/events"
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/flashcards"
	"github.com/afuente/examly/internal/history"
	"github.com/afuente/examly/internal/kvstore"
	"github.com/afuente/examly/internal/logging"
	"github.com/afuente/examly/internal/questions"
)

var rootCmd = &cobra.Command{
	Use:   "examly",
	Short: "Exam practice and daily drills for PMP and FCE prep",
	Long:  "Examly — practice sessions, a daily question, and streak tracking for PMP and FCE certification prep.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite store file (overrides EXAMLY_DB env var)")
	rootCmd.PersistentFlags().String("exam", "", "Switch the active exam (pmp or fce) before running")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")

	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(flashcardsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(thresholdCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// app wires the store, trackers and achievement engine for one command
// invocation.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	store   *kvstore.SQLiteStore
	watcher *kvstore.Watcher
	bus     *events.Bus
	sel     *examinfo.Selection
	exam    examinfo.Type
	client  *questions.Client
	cards   *flashcards.Client
	history *history.Tracker
	daily   *daily.Tracker
	engine  *achievements.Engine
}

func newApp(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if d, _ := cmd.Flags().GetBool("debug"); d {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(cfg.Debug)

	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = kvstore.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	} else if err := kvstore.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	store, err := kvstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sel := examinfo.NewSelection(store, log)
	if raw, _ := cmd.Flags().GetString("exam"); raw != "" {
		t, err := examinfo.Parse(raw)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := sel.Select(t); err != nil {
			store.Close()
			return nil, fmt.Errorf("switch exam: %w", err)
		}
	}

	watcher := kvstore.NewWatcher(store, cfg.WatchInterval, log)
	watcher.Start()

	bus := events.NewBus()
	client := questions.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)

	a := &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		watcher: watcher,
		bus:     bus,
		sel:     sel,
		exam:    sel.Current(),
		client:  client,
		cards:   flashcards.NewClient(cfg.FlashcardsURL, cfg.HTTPTimeout, log),
		history: history.NewTracker(store, sel, bus, log),
		daily:   daily.NewTracker(store, client, bus, log),
		engine: achievements.NewEngine(store, sel, bus, log,
			achievements.WithUnlockTTL(cfg.UnlockTTL),
			achievements.WithDebounce(cfg.RebindDebounce),
			achievements.WithWatcher(watcher)),
	}

	a.engine.CheckAppUsage()
	a.engine.ApplyTestHistory(a.history.Filtered())
	return a, nil
}

func (a *app) Close() {
	a.engine.Close()
	a.watcher.Stop()
	if err := a.store.Close(); err != nil {
		a.log.Error("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

// reportUnlocks prints any achievement unlocked during this invocation or
// left pending by a previous run.
func (a *app) reportUnlocks(cmd *cobra.Command) {
	for _, id := range a.engine.NewlyUnlocked() {
		cmd.Printf("🏆 Achievement unlocked: %s\n", unlockLabel(id))
	}
	if id, ok := a.engine.PendingUnlock(); ok {
		cmd.Printf("🏆 Achievement unlocked: %s\n", unlockLabel(id))
	}
}

func unlockLabel(id string) string {
	switch id {
	case achievements.UnlockAppUsage:
		return "App Usage Streak"
	case achievements.UnlockDailyQuestion:
		return "Daily Question Streak"
	case achievements.UnlockScoreThreshold:
		return "Score Threshold"
	default:
		return id
	}
}
