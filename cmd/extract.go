package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/profile"
	"github.com/spigell/resume-ats/internal/resumefile"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume>",
	Short: "Extract a candidate profile from a résumé file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		if err := extract(cmd.Context(), cmd.OutOrStdout(), resumefile.New(logger), args[0]); err != nil {
			logger.Fatal("extracting profile", zap.Error(err), zap.String("resume", args[0]))
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extract(ctx context.Context, out io.Writer, reader *resumefile.Reader, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := reader.ReadText(ctx, path)
	if err != nil {
		return err
	}

	return writeJSON(out, profile.Extract(text))
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func writeJSON(out io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(pretty))
	return err
}
