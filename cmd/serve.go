package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, log := bootstrap(ctx)

		store, closeStore, err := e.newStore(ctx)
		defer closeStore()
		if err != nil {
			log.Fatal("initializing storage", zap.Error(err))
		}

		source, err := e.jobSource()
		if err != nil {
			log.Fatal("initializing job source", zap.Error(err))
		}

		srv, err := server.New(server.Deps{
			Parser:    e.parser,
			Ranker:    e.ranker,
			Jobs:      filteredSource{source: source, engine: e},
			Store:     store,
			Mode:      e.mode(),
			Logger:    log,
			MaxUpload: e.config.Server.MaxUploadMB << 20,
		})
		if err != nil {
			log.Fatal("initializing server", zap.Error(err))
		}

		if err := srv.Listen(ctx, e.config.Server.Addr); err != nil {
			log.Fatal("serving", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8765)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

// filteredSource applies the configured prefilters to every listing request.
type filteredSource struct {
	source jobs.Source
	engine *engine
}

func (f filteredSource) List(ctx context.Context) (*jobs.Listings, error) {
	listings, err := f.source.List(ctx)
	if err != nil {
		return nil, err
	}

	cfg := f.engine.config.Filters
	return filtering.Run(ctx, cfg, filtering.Deps{Logger: f.engine.logger}, f.engine.filterSteps(), listings)
}
