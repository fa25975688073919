package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/V4T54L/dealer-portal/internal/adapter/api/middleware"
	"github.com/V4T54L/dealer-portal/internal/adapter/repository/postgres"
	s3sink "github.com/V4T54L/dealer-portal/internal/adapter/storage/s3"
	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/pkg/config"
	"github.com/V4T54L/dealer-portal/internal/pkg/logger"
	"github.com/V4T54L/dealer-portal/internal/store"
	"github.com/V4T54L/dealer-portal/internal/usecase"
)

var (
	actorName   string
	scopeSel    string
	sortMode    string
	exportDate  string
	stateFilter string
	publish     bool
	tokenTTL    time.Duration

	rootCmd = &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tool for the dealer notes portal",
		SilenceUsage: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}

	tokenCmd = &cobra.Command{
		Use:   "token [username]",
		Short: "Issue an API token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print the activity report as JSON",
		RunE:  runReport,
	}

	exportCmd = &cobra.Command{
		Use:   "export [search|not-visited|rep-deals|route]",
		Short: "Render a view as CSV to stdout, or publish it to export storage",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	regionsCmd = &cobra.Command{
		Use:   "regions",
		Short: "List the regions catalog",
		RunE:  runRegions,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&actorName, "as", "admin", "username to act as")

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	reportCmd.Flags().StringVar(&scopeSel, "scope", usecase.ScopeAll, "ALL or a rep username")
	reportCmd.Flags().StringVar(&sortMode, "sort", usecase.SortOverdue, "not-visited order: overdue or recent")

	exportCmd.Flags().StringVar(&scopeSel, "scope", usecase.ScopeAll, "report scope for not-visited and rep-deals")
	exportCmd.Flags().StringVar(&sortMode, "sort", usecase.SortOverdue, "not-visited order")
	exportCmd.Flags().StringVar(&exportDate, "date", time.Now().Format(domain.DateLayout), "route date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&stateFilter, "state", "", "state filter for search")
	exportCmd.Flags().BoolVar(&publish, "publish", false, "upload to the export bucket instead of printing")

	rootCmd.AddCommand(migrateCmd, tokenCmd, reportCmd, exportCmd, regionsCmd)
}

// session is a loaded snapshot plus the acting user.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	store  *store.Store
	actor  domain.User
}

func open(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.PIIRedactionFields...)

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	s := store.New(postgres.NewRepository(db, log), nil, log, nil)
	if err := s.Refresh(ctx); err != nil {
		db.Close()
		return nil, err
	}
	actor, err := usecase.ResolveActor(s.Snapshot(), actorName)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: log, db: db, store: s, actor: actor}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	actorName = args[0]
	sess, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.db.Close()

	token, err := middleware.GenerateToken(sess.actor.Username, sess.actor.Role, sess.actor.Status, sess.cfg.JWTSecret, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	sess, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.db.Close()

	report, err := usecase.NewReportUseCase(sess.store).Build(sess.actor, scopeSel, sortMode)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := open(ctx)
	if err != nil {
		return err
	}
	defer sess.db.Close()

	var sink domain.ExportSink
	if publish {
		bucketSink, err := s3sink.NewFromEnv(ctx, sess.cfg.ExportBucket, sess.cfg.AWSRegion)
		if err != nil {
			return err
		}
		if bucketSink == nil {
			return fmt.Errorf("--publish needs EXPORT_S3_BUCKET")
		}
		sink = bucketSink
	}

	search := usecase.NewSearchUseCase(sess.store)
	reports := usecase.NewReportUseCase(sess.store)
	routes := usecase.NewRouteUseCase(sess.store)
	exports := usecase.NewExportUseCase(search, reports, routes, sink, sess.logger)

	req := usecase.ExportRequest{
		View:   args[0],
		Filter: usecase.DealerFilter{State: stateFilter},
		Scope:  scopeSel,
		Sort:   sortMode,
		Date:   exportDate,
	}
	if publish {
		location, err := exports.Publish(ctx, sess.actor, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), location)
		return nil
	}

	body, err := exports.Render(sess.actor, req)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(body)
	return err
}

func runRegions(cmd *cobra.Command, args []string) error {
	sess, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.db.Close()

	catalog := sess.store.Snapshot().Regions
	for _, state := range catalog.States() {
		for _, region := range catalog[state] {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d dealers\n", state, region, sess.store.Snapshot().DealersInRegion(state, region))
		}
	}
	return nil
}
