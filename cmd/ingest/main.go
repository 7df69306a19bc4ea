// Command ingest (re)builds the demo supply chain graph in Neo4j.
//
// By default the whole database is wiped before writing, so running it twice
// produces a fresh random graph rather than a merged one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/supplychain-optimizer/server/internal/core"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
	"github.com/supplychain-optimizer/server/internal/supplychain"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
	pkgneo4j "github.com/supplychain-optimizer/server/pkg/neo4j"
)

// IngestConfig is read from the environment; flags control the dataset.
type IngestConfig struct {
	Env   string `envconfig:"APP_ENV" default:"development"`
	Neo4j pkgneo4j.Config
}

type options struct {
	generator    supplychain.GeneratorConfig
	batchSize    int
	keepExisting bool
	dryRun       bool
	timeout      time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{generator: supplychain.DefaultGeneratorConfig()}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Generate the demo supply chain and load it into Neo4j",
		Long: `Generate a random supply chain graph and write it into Neo4j.

Unless --keep-existing is set every node and relationship in the database is
deleted first. Uniqueness constraints are created when missing.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.generator.Seed, "seed", 0, "Random seed (0 = time based)")
	f.IntVar(&opts.generator.Suppliers, "suppliers", opts.generator.Suppliers, "Number of suppliers")
	f.IntVar(&opts.generator.Products, "products", opts.generator.Products, "Number of products")
	f.IntVar(&opts.generator.Warehouses, "warehouses", opts.generator.Warehouses, "Number of warehouses")
	f.IntVar(&opts.generator.Locations, "locations", opts.generator.Locations,
		fmt.Sprintf("Number of cities (max %d)", supplychain.MaxLocations()))
	f.IntVar(&opts.generator.Incidents, "incidents", opts.generator.Incidents, "Number of incidents")
	f.Float64Var(&opts.generator.ConnectProbability, "connect-prob", opts.generator.ConnectProbability,
		"Probability of a CONNECTED_TO edge between two cities")
	f.IntVar(&opts.batchSize, "batch-size", supplychain.DefaultBatchSize, "Rows per UNWIND batch")
	f.BoolVar(&opts.keepExisting, "keep-existing", false, "Do not wipe the database before writing")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Generate and report counts without touching Neo4j")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Overall ingestion timeout")

	return cmd
}

func runIngest(cmd *cobra.Command, opts *options) error {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("Could not load .env file")
	}
	var cfg IngestConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("failed to process environment config: %w", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Env), Service: "supply-chain-ingest"})

	ds, err := supplychain.Generate(opts.generator)
	if err != nil {
		return errx.Validation("%v", err)
	}
	logx.Info().
		Int("nodes", ds.NodeCount()).
		Interface("relationships", ds.EdgeCounts()).
		Msg("Dataset generated")

	if opts.dryRun {
		return writeJSON(cmd, map[string]any{
			"dry_run":       true,
			"nodes":         ds.NodeCount(),
			"relationships": ds.EdgeCounts(),
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	driver, err := cfg.Neo4j.New(ctx)
	if err != nil {
		return errx.WrapNeo4j(err)
	}
	defer driver.Close(context.Background())

	ingester := supplychain.NewIngester(supplychain.NewStore(driver, cfg.Neo4j.Database), supplychain.DefaultSchema())
	summary, err := ingester.Run(ctx, ds, supplychain.IngestOptions{
		KeepExisting: opts.keepExisting,
		BatchSize:    opts.batchSize,
	})
	if err != nil {
		return err
	}

	logx.Info().Dur("duration", summary.Duration).Msg("Data ingestion complete")
	return writeJSON(cmd, summary)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
