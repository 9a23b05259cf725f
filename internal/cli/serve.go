package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/scaleproof/internal/server"
	"github.com/ppiankov/scaleproof/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveAddr  string
	serveInput string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve verified scales over a read-only HTTP API",
	Long: `Serve exposes the scale database over HTTP:
  GET  /scales        verified scales only
  GET  /scales/{id}   one verified scale (404 otherwise)
  POST /validate      validate and store one scale
  GET  /sources       approved-source registry
  GET  /stats         stored / verified counts

With --input the database is seeded by a full validation run first.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "seed the database by validating this scales file")
	serveCmd.Flags().StringVar(&sourcesPath, "sources", "", "approved sources file (JSON or YAML); built-in defaults otherwise")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	registry, err := loadRegistry(sourcesPath)
	if err != nil {
		return err
	}
	log := cmd.ErrOrStderr()
	comps, err := buildComponents(cfg, registry, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := store.NewDatabase()
	if serveInput != "" {
		scales, err := readScales(serveInput)
		if err != nil {
			return err
		}
		run, err := comps.engine.OrchestrateCompleteValidation(ctx, scales)
		if err != nil {
			return fmt.Errorf("seed validation: %w", err)
		}
		for i := range run.Results {
			if _, err := db.AddScale(scales[i], &run.Results[i]); err != nil {
				return fmt.Errorf("store %s: %w", scales[i].ID, err)
			}
		}
		stats := db.Stats()
		fmt.Fprintf(log, "✓ Seeded %d scales (%d verified)\n", stats.Total, stats.Verified)
	}

	srv := server.New(db, comps.engine, comps.registry, server.Options{Log: log, Verbose: cfg.Output.Verbose})
	return srv.ListenAndServe(ctx, serveAddr)
}
