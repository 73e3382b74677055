package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/catalog-audit-cli/internal/browser"
	"github.com/sells-group/catalog-audit-cli/internal/config"
	"github.com/sells-group/catalog-audit-cli/internal/fetcher"
	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/navigate"
	"github.com/sells-group/catalog-audit-cli/internal/progress"
	"github.com/sells-group/catalog-audit-cli/internal/resilience"
	"github.com/sells-group/catalog-audit-cli/internal/runner"
	"github.com/sells-group/catalog-audit-cli/internal/sink"
	"github.com/sells-group/catalog-audit-cli/internal/store"
)

const defaultOutputPath = "No Discovery Check.xlsx"

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit an identifier list against the catalog",
	Long:  "Reads identifiers from the input workbook, searches each one in the catalog, classifies the listing, and appends results to the output workbook as it goes.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("input", "", "input workbook path")
	checkCmd.Flags().String("sheet", "", "input sheet name")
	checkCmd.Flags().String("column", "", "identifier column header")
	checkCmd.Flags().String("output", "", "output workbook path")
	checkCmd.Flags().String("store-code", "", "store context to select after login")
	checkCmd.Flags().Int("limit", 0, "process at most this many identifiers")
	checkCmd.Flags().Int("sessions", 0, "parallel browser sessions")
	checkCmd.Flags().String("status-addr", "", "serve run progress as JSON on this address")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	applyCheckFlags(cmd)

	if cfg.Input.Path == "" {
		return eris.New("check: input workbook required (--input or config)")
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = defaultOutputPath
	}

	ids, err := fetcher.ReadIdentifiers(cfg.Input.Path, cfg.Input.Sheet, cfg.Input.Column)
	if err != nil {
		return eris.Wrap(err, "check: read input")
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return eris.Errorf("check: no identifiers in %s", cfg.Input.Path)
	}

	locs, err := browser.LoadLocators(cfg.Catalog.Locators)
	if err != nil {
		return eris.Wrap(err, "check: load locators")
	}

	out, err := sink.NewWorkbook(cfg.Output.Path, cfg.Output.Sheet)
	if err != nil {
		return eris.Wrap(err, "check: open output")
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "check: open run log")
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "check: migrate run log")
	}
	run, err := st.CreateRun(ctx, cfg.Catalog.StoreCode, len(ids))
	if err != nil {
		return eris.Wrap(err, "check: create run")
	}

	tracker := progress.NewTracker(len(ids))

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	if cfg.Run.StatusAddr != "" {
		go func() {
			if err := tracker.Serve(serveCtx, cfg.Run.StatusAddr); err != nil {
				zap.L().Warn("status endpoint stopped", zap.Error(err))
			}
		}()
	}

	var limiter *rate.Limiter
	if cfg.Run.SearchesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Run.SearchesPerMinute/60.0), 1)
	}

	machine := navigate.NewMachine(machineConfig(cfg))

	sessions := cfg.Run.Sessions
	if sessions < 1 {
		sessions = 1
	}
	chunks := runner.Split(ids, sessions)
	statuses := make([]model.RunStatus, len(chunks))

	zap.L().Info("starting audit",
		zap.String("run_id", run.ID),
		zap.Int("identifiers", len(ids)),
		zap.Int("sessions", len(chunks)),
		zap.Int("max_restarts", cfg.Run.MaxRestarts))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			budget := resilience.NewBudget(cfg.Run.MaxRestarts)
			ctrl := browser.NewController(cfg.Catalog, cfg.Browser, locs, budget)
			r := runner.New(ctrl, machine, budget, out, runner.Options{
				Store:   st,
				RunID:   run.ID,
				Tracker: tracker,
				Limiter: limiter,
			})
			status, err := r.Run(gctx, chunk)
			statuses[i] = status
			return err
		})
	}
	runErr := g.Wait()
	stopServe()

	if err := out.Finalize(ctx); err != nil {
		zap.L().Error("finalizing workbook", zap.Error(err))
	}

	final := model.RunStatusComplete
	for _, s := range statuses {
		if s == model.RunStatusPartial && final == model.RunStatusComplete {
			final = model.RunStatusPartial
		}
		if s == model.RunStatusFailed {
			final = model.RunStatusFailed
		}
	}
	if runErr != nil {
		final = model.RunStatusFailed
	}
	if err := st.FinishRun(ctx, run.ID, final); err != nil {
		zap.L().Warn("closing run log entry", zap.Error(err))
	}

	snap := tracker.Snapshot()
	zap.L().Info("audit finished",
		zap.String("run_id", run.ID),
		zap.String("status", string(final)),
		zap.Int("processed", snap.Processed),
		zap.Int("events", snap.Events),
		zap.Int("restarts", snap.Restarts),
		zap.Duration("elapsed", time.Duration(snap.ElapsedSecs*float64(time.Second))))

	if runErr != nil {
		return eris.Wrap(runErr, "check: run")
	}
	if final == model.RunStatusPartial {
		return eris.New("check: restart budget exhausted, results are partial")
	}
	return nil
}

func applyCheckFlags(cmd *cobra.Command) {
	flag := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	flag("input", &cfg.Input.Path)
	flag("sheet", &cfg.Input.Sheet)
	flag("column", &cfg.Input.Column)
	flag("output", &cfg.Output.Path)
	flag("store-code", &cfg.Catalog.StoreCode)
	flag("status-addr", &cfg.Run.StatusAddr)
	if cmd.Flags().Changed("sessions") {
		cfg.Run.Sessions, _ = cmd.Flags().GetInt("sessions")
	}
}

func machineConfig(c *config.Config) navigate.Config {
	return navigate.Config{
		SettleDelay:            time.Duration(c.Navigate.SettleMs) * time.Millisecond,
		FirstSettleDelay:       time.Duration(c.Navigate.FirstSettleMs) * time.Millisecond,
		SearchTimeout:          time.Duration(c.Navigate.SearchTimeoutSecs) * time.Second,
		ProbeTimeout:           time.Duration(c.Navigate.ProbeTimeoutSecs) * time.Second,
		StatusTimeout:          time.Duration(c.Navigate.StatusTimeoutSecs) * time.Second,
		DiscoveryAttempts:      c.Navigate.DiscoveryAttempts,
		FirstDiscoveryAttempts: c.Navigate.FirstDiscoveryAttempts,
		DiscoveryBackoff:       time.Duration(c.Navigate.DiscoveryBackoffMs) * time.Millisecond,
		HomeURL:                c.Catalog.BaseURL,
		NoResultsFragment:      "/search/product?q=",
	}
}
