package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spigell/jobfit/internal/textextract"
	"go.uber.org/zap"
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume>",
	Short: "Parse a resume file (.txt, .md, .pdf, .docx) and print it as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e, log := bootstrap(ctx)

		r, err := e.parseResumeFile(ctx, args[0])
		if err != nil {
			log.Fatal("parsing resume", zap.Error(err), zap.String("file", args[0]))
		}

		printJSON(r, log)
	},
}

var skillsCmd = &cobra.Command{
	Use:   "skills <resume>",
	Short: "Print the skills found in a resume file",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e, log := bootstrap(ctx)

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal("reading resume", zap.Error(err))
		}

		text, err := textextract.Extract(data, args[0])
		if err != nil {
			log.Fatal("extracting text", zap.Error(err))
		}

		printJSON(e.extractor.Extract(ctx, text), log)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(skillsCmd)
}

// printJSON writes v to stdout. Logs go to stderr, so the output can be piped.
func printJSON(v any, log *zap.Logger) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal("encoding output", zap.Error(err))
	}
	fmt.Println(string(pretty))
}
