package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <resume>",
	Short: "Suggest skills and resume changes that would match more jobs",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e, log := bootstrap(ctx)

		r, err := e.parseResumeFile(ctx, args[0])
		if err != nil {
			log.Fatal("parsing resume", zap.Error(err), zap.String("file", args[0]))
		}

		listings, err := e.loadJobs(ctx)
		if err != nil {
			log.Fatal("getting jobs", zap.Error(err))
		}

		printJSON(e.ranker.SuggestImprovements(r, listings.Values()), log)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
