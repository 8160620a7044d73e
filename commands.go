package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"regional-pulse/dashboard"
	"regional-pulse/database"
	"regional-pulse/handlers"
	"regional-pulse/ingest"
	"regional-pulse/jobs"
	"regional-pulse/market"
	"regional-pulse/scoring"
	"regional-pulse/templates"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server and the scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, union, err := database.OpenAll(cfg.Database.Paths, log)
		if err != nil {
			return err
		}
		defer union.Close()

		prices := market.NewYahoo(
			market.WithBaseURL(cfg.Market.BaseURL),
			market.WithTimeout(cfg.Market.Timeout),
			market.WithRateLimit(cfg.Market.RatePerSecond),
			market.WithLogger(log),
		)
		svc, err := dashboard.NewService(union, prices, cfg.Taxonomy, dashboard.Options{
			CountUnscored: cfg.Dashboard.CountUnscored,
			PopupSize:     cfg.Dashboard.PopupSize,
		}, log)
		if err != nil {
			return err
		}

		scheduler := jobs.NewScheduler(log)
		runner := scoring.NewRunner(store, newScorer(), cfg.Scoring.BatchSize, log)
		if err := scheduler.Add(jobs.ScoreJob(cfg.Jobs.ScoreSchedule, runner)); err != nil {
			return err
		}
		if err := scheduler.Add(jobs.PruneJob(cfg.Jobs.PruneSchedule, store, cfg.Jobs.RetentionDays, nil, log)); err != nil {
			return err
		}
		scheduler.Start()
		if runAtStart, _ := cmd.Flags().GetBool("run-at-start"); runAtStart {
			go func() {
				for _, name := range []string{jobs.PruneJobName, jobs.ScoreJobName} {
					// failures are logged by the scheduler
					_ = scheduler.RunNow(name)
				}
			}()
		}

		gin.SetMode(cfg.Server.GinMode)
		r := gin.New()
		r.Use(gin.Recovery(), handlers.RequestLogger(log))

		tmpl, err := templates.Load()
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		r.SetHTMLTemplate(tmpl)
		if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
			r.Static("/static", cfg.Server.StaticDir)
		}
		handlers.New(svc, log).Register(r)

		srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("Starting dashboard server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				scheduler.Stop(context.Background())
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
		scheduler.Stop(shutdownCtx)
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("run-at-start", false, "prune and score once at startup instead of waiting for the first tick")
}

// newScorer selects the remote scorer when an endpoint is configured.
func newScorer() scoring.Scorer {
	if cfg.Scoring.Endpoint == "" {
		log.Info().Msg("Using lexicon sentiment scorer")
		return scoring.NewLexiconScorer()
	}
	log.Info().Str("endpoint", cfg.Scoring.Endpoint).Str("model", cfg.Scoring.Model).Msg("Using remote sentiment scorer")
	return scoring.NewHTTPScorer(cfg.Scoring.Endpoint, cfg.Scoring.APIKey, cfg.Scoring.Model, cfg.Scoring.Timeout)
}

func openWriteStore() (*database.Store, error) {
	path := cfg.Database.WritePath()
	db, err := database.Open(path, log)
	if err != nil {
		return nil, err
	}
	return database.NewStore(db, path), nil
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest [csv...]",
	Short: "Import crawler CSV exports into the write database",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			var err error
			if paths, err = ingest.Discover(cfg.Ingest.Glob); err != nil {
				return err
			}
		}

		store, err := openWriteStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var since time.Time
		if all, _ := cmd.Flags().GetBool("all"); !all {
			since = jobs.RetentionCutoff(time.Now(), cfg.Jobs.RetentionDays)
		}

		keywords := ingest.NewKeywordExtractor(cfg.Taxonomy.Stopwords, cfg.Taxonomy.ExcludedKeywordParts, ingest.DefaultKeywordLimit)
		importer := ingest.NewImporter(store, keywords, ingest.Options{
			Workers:   cfg.Ingest.Workers,
			RegionMap: cfg.Taxonomy.IngestRegions,
		}, log)

		res, err := importer.ImportFiles(cmd.Context(), paths, since)
		if err != nil {
			return err
		}
		log.Info().
			Int("files", res.Files).
			Int("read", res.Read).
			Int("inserted", res.Inserted).
			Int("invalid", res.Invalid).
			Int("old", res.Old).
			Int("existing", res.Existing).
			Msg("Import finished")
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d of %d files could not be read", len(res.Failed), res.Files)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().Bool("all", false, "import rows older than the retention window too")
}

// --- Score Command ---

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every unprocessed article once",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWriteStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := scoring.NewRunner(store, newScorer(), cfg.Scoring.BatchSize, log).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("scored %d, failed %d in %s\n", stats.Scored, stats.Failed, stats.Duration.Round(time.Millisecond))
		return nil
	},
}

// --- Reset Command ---

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every article from the write database and restart ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset deletes every article in %s; pass --yes to confirm", cfg.Database.WritePath())
		}

		store, err := openWriteStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Purge(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().Int64("deleted", n).Str("path", store.Name()).Msg("Database reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm deleting every article")
}

// --- Prune Command ---

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete articles older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWriteStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if days, _ := cmd.Flags().GetInt("days"); days > 0 {
			cfg.Jobs.RetentionDays = days
		}
		return jobs.PruneJob("", store, cfg.Jobs.RetentionDays, nil, log).Run(cmd.Context())
	},
}

func init() {
	pruneCmd.Flags().Int("days", 0, "retention window in days (default RETENTION_DAYS)")
}
