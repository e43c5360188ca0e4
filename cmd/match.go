package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/jobfit/internal/export"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

const (
	PromptExit                = "Exit"
	PromptReasoning           = "Show reasoning"
	PromptSuggestions         = "Show improvement suggestions"
	PromptExport              = "Export to Excel"
	PromptAppendToExcludeFile = "Append all jobs to exclude file"
	PromptJobsToFile          = "Dump jobs to file"

	defaultReport = "jobfit-report.xlsx"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReasoning, PromptSuggestions, PromptExport, PromptAppendToExcludeFile, PromptJobsToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match <resume>",
	Short: "Rank jobs against a resume",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		match(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	matchCmd.Flags().StringP("mode", "m", "", "matching mode: skills or semantic")
	matchCmd.Flags().IntP("top", "k", 0, "number of jobs to show (0 keeps the configured value)")
	matchCmd.Flags().String("job", "", "score a single job by id")
	matchCmd.Flags().StringP("output", "o", "", "write an Excel report to this path")
	matchCmd.Flags().StringSlice("skip-filter", nil, "filters to disable: companies, exclude_file, location, experience, keywords")

	viper.BindPFlag("filters.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("matching.mode", matchCmd.Flags().Lookup("mode"))
	viper.BindPFlag("filters.skip", matchCmd.Flags().Lookup("skip-filter"))
}

// session is the state of one interactive match run.
type session struct {
	engine   *engine
	resume   *resume.Resume
	listings *jobs.Listings
	matches  []matching.JobMatch
	logger   *zap.Logger
}

func match(cmd *cobra.Command, path string) {
	ctx := context.Background()

	e, log := bootstrap(ctx)

	r, err := e.parseResumeFile(ctx, path)
	if err != nil {
		log.Fatal("parsing resume", zap.Error(err), zap.String("file", path))
	}

	log.Info("resume parsed",
		zap.String(logger.FieldResumeID, r.ID),
		zap.String("name", r.Name),
		zap.Int("skills", len(r.Skills)),
		zap.Float64("experience_years", r.TotalExperienceYears),
	)

	listings, err := e.loadJobs(ctx)
	if err != nil {
		log.Fatal("getting jobs", zap.Error(err))
	}

	if listings.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	if id, _ := cmd.Flags().GetString("job"); id != "" {
		scoreOne(ctx, e, r, listings, id, log)
		return
	}

	topK := e.config.Matching.TopK
	if k, _ := cmd.Flags().GetInt("top"); k > 0 {
		topK = k
	}

	matches, err := e.ranker.RankMode(ctx, e.mode(), r, listings.Values(), topK)
	if err != nil {
		log.Fatal("ranking jobs", zap.Error(err))
	}

	s := &session{engine: e, resume: r, listings: listings, matches: matches, logger: log}
	s.persist(ctx)
	s.report()

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := s.export(output); err != nil {
			log.Fatal("exporting report", zap.Error(err))
		}
	}

	if approve, _ := cmd.Flags().GetBool("auto-approve"); approve {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

// bootstrap creates the logger, reads the config and builds the engine.
func bootstrap(ctx context.Context) (*engine, *zap.Logger) {
	zl, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		Level: viper.GetString("log-level"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	zl.Info("starting jobfit", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zl.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	e, err := newEngine(ctx, config, zl)
	if err != nil {
		zl.Fatal("initializing", zap.Error(err))
	}

	return e, zl
}

func scoreOne(ctx context.Context, e *engine, r *resume.Resume, listings *jobs.Listings, id string, log *zap.Logger) {
	job := listings.FindByID(id)
	if job == nil {
		log.Fatal("job not found", zap.String(logger.FieldJobID, id))
	}

	var (
		m   matching.JobMatch
		err error
	)
	switch e.mode() {
	case matching.ModeSemantic:
		m, err = e.scorer.ScoreSemantic(ctx, r, *job)
	default:
		m = e.scorer.Score(r, *job)
	}
	if err != nil {
		log.Fatal("scoring job", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(m, "", "  ")
	log.Info(string(pretty), logger.JobFields(r.ID, id)...)
}

func (s *session) persist(ctx context.Context) {
	store, closeStore, err := s.engine.newStore(ctx)
	defer closeStore()
	if err != nil {
		s.logger.Warn("storage unavailable, results are not saved", zap.Error(err))
		return
	}

	if err := store.SaveResume(ctx, s.resume); err != nil {
		s.logger.Warn("saving resume", zap.Error(err))
		return
	}
	if err := store.SaveMatches(ctx, s.resume.ID, s.matches); err != nil {
		s.logger.Warn("saving matches", zap.Error(err))
	}
}

func (s *session) report() {
	s.logger.Info("current list of matches", zap.Int("count", len(s.matches)))

	for i, m := range s.matches {
		s.logger.Info(fmt.Sprintf("#%d %s / %s", i+1, m.Job.Title, m.Job.Company),
			zap.String(logger.FieldJobID, m.Job.ID),
			zap.Float64("score", m.MatchScore),
			zap.Float64("skills", m.SkillMatchScore),
			zap.Float64("experience", m.ExperienceMatchScore),
			zap.Bool("best_fit", m.BestFit),
			zap.Strings("missing", m.MissingSkills),
		)
	}
}

func (s *session) handleAction(action string) error {
	switch action {
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReasoning:
		for _, m := range s.matches {
			s.logger.Info(m.Reasoning, zap.String(logger.FieldJobID, m.Job.ID), zap.Strings("suggestions", m.Suggestions))
		}
		return nil
	case PromptSuggestions:
		imp := s.engine.ranker.SuggestImprovements(s.resume, s.listings.Values())
		pretty, _ := json.MarshalIndent(imp, "", "  ")
		s.logger.Info(string(pretty))
		return nil
	case PromptExport:
		return s.export(defaultReport)
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	case PromptJobsToFile:
		filename, err := s.listings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump jobs to file: %w", err)
		}
		s.logger.Info("dumping jobs to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) export(path string) error {
	imp := s.engine.ranker.SuggestImprovements(s.resume, s.listings.Values())

	written, err := export.WriteFile(export.Report{
		Resume:      s.resume,
		Matches:     s.matches,
		Improvement: &imp,
	}, path)
	if err != nil {
		return err
	}

	s.logger.Info("report written", zap.String("filename", written))
	return nil
}

// appendToExcludeFile records the ranked jobs so the next run skips them.
func (s *session) appendToExcludeFile() error {
	excludeFile := viper.GetString("filters.exclude-file")
	if excludeFile == "" {
		s.logger.Warn("exclude file is not configured", zap.String("hint", "use --exclude-file or filters.exclude-file"))
		return nil
	}

	excluded, err := jobs.ExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	ranked := &jobs.Listings{}
	for i := range s.matches {
		ranked.Items = append(ranked.Items, &s.matches[i].Job)
	}

	excluded.Append(ranked.ToExcluded(time.Now()))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", ranked.Len()))

	s.listings.Exclude(jobs.ListingIDField, excluded.IDs())
	s.matches = s.matches[:0]

	return nil
}
