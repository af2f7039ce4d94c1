package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ats/internal/filtering"
	"github.com/spigell/resume-ats/internal/scoring"
)

const (
	app       = "resume-ats"
	envPrefix = "RESUME_ATS"
)

type Config struct {
	JobDescription *JobDescriptionConfig `mapstructure:"job-description" validate:"required"`
	Scoring        *ScoringConfig        `mapstructure:"scoring"`
	Processing     *ProcessingConfig     `mapstructure:"processing"`
	Candidates     []*CandidateConfig    `mapstructure:"candidates" validate:"required,min=1,dive,required"`
	Filters        *FiltersConfig        `mapstructure:"filters"`
}

type JobDescriptionConfig struct {
	Title string `mapstructure:"title"`
	File  string `mapstructure:"file" validate:"required_without=Text"`
	Text  string `mapstructure:"text" validate:"required_without=File"`
}

type ScoringConfig struct {
	Weights map[string]any `mapstructure:"weights"`
}

type ProcessingConfig struct {
	Concurrency int  `mapstructure:"concurrency" validate:"gte=0"`
	Force       bool `mapstructure:"force"`
}

type CandidateConfig struct {
	FullName   string        `mapstructure:"full-name" validate:"required"`
	Email      string        `mapstructure:"email" validate:"omitempty,email"`
	Phone      string        `mapstructure:"phone"`
	Resume     string        `mapstructure:"resume" validate:"required_without=Text"`
	Text       string        `mapstructure:"text" validate:"required_without=Resume"`
	Profile    any           `mapstructure:"profile"`
	Status     string        `mapstructure:"status" validate:"omitempty,oneof=new reviewed shortlisted rejected"`
	ReviewedBy string        `mapstructure:"reviewed-by"`
	Notes      []*NoteConfig `mapstructure:"notes" validate:"dive,required"`
}

// NoteConfig is a review note carried over from an earlier review round.
type NoteConfig struct {
	Author string `mapstructure:"author" validate:"required"`
	Text   string `mapstructure:"text" validate:"required"`
}

type FiltersConfig struct {
	MinScore      *float64 `mapstructure:"min-score" validate:"omitempty,gte=0,lte=100"`
	MaxScore      *float64 `mapstructure:"max-score" validate:"omitempty,gte=0,lte=100"`
	Status        string   `mapstructure:"status" validate:"omitempty,oneof=new reviewed shortlisted rejected"`
	Skills        []string `mapstructure:"skills"`
	MinExperience *int     `mapstructure:"min-experience" validate:"omitempty,gte=0"`
	Sort          string   `mapstructure:"sort" validate:"omitempty,oneof=score_desc score_asc"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ats extracts candidate profiles from résumés and ranks them against a job description",
	}
)

// Execute executes the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ats.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Only the rank command is driven by the config file.
	if rankCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if config.Scoring != nil {
		if err := validateWeights(config.Scoring.Weights); err != nil {
			return nil, err
		}
	}

	if f := config.Filters; f != nil && f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore {
		return nil, fmt.Errorf("validating config: filters.min-score %.2f is greater than filters.max-score %.2f", *f.MinScore, *f.MaxScore)
	}

	return config, nil
}

// validateWeights accepts only the known factors with non-negative numbers.
func validateWeights(weights map[string]any) error {
	for key, raw := range weights {
		w := scoring.ParseWeightOverrides(map[string]any{key: raw})
		value := firstSet(w.Skills, w.Experience, w.Education, w.Keywords)
		if value == nil {
			if !isFactor(key) {
				return fmt.Errorf("validating config: unknown scoring weight %q", key)
			}
			return fmt.Errorf("validating config: scoring weight %q must be a number, got %v", key, raw)
		}
		if *value < 0 {
			return fmt.Errorf("validating config: scoring weight %q must not be negative", key)
		}
	}
	return nil
}

func isFactor(key string) bool {
	switch key {
	case scoring.FactorSkills, scoring.FactorExperience, scoring.FactorEducation, scoring.FactorKeywords:
		return true
	}
	return false
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (c *Config) weightOverrides() *scoring.WeightOverrides {
	if c.Scoring == nil {
		return nil
	}
	overrides := scoring.ParseWeightOverrides(c.Scoring.Weights)
	return &overrides
}

func (c *Config) filteringConfig() *filtering.Config {
	if c.Filters == nil {
		return nil
	}
	return &filtering.Config{
		MinScore:      c.Filters.MinScore,
		MaxScore:      c.Filters.MaxScore,
		Status:        c.Filters.Status,
		Skills:        c.Filters.Skills,
		MinExperience: c.Filters.MinExperience,
	}
}

func (c *Config) sortOrder() string {
	if c.Filters == nil {
		return ""
	}
	return c.Filters.Sort
}

func (c *Config) processing() ProcessingConfig {
	if c.Processing == nil {
		return ProcessingConfig{}
	}
	return *c.Processing
}
