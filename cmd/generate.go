package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduagent/internal/content"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate, review and refine content for one topic",
	Example: `  eduagent generate --grade 5 --topic "Photosynthesis"
  eduagent generate -g 2 -t "Fractions" --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetString("grade")
		topic, _ := cmd.Flags().GetString("topic")
		format, _ := cmd.Flags().GetString("format")
		noSave, _ := cmd.Flags().GetBool("no-save")

		topic = strings.TrimSpace(topic)
		if topic == "" {
			return fmt.Errorf("topic is required")
		}
		if err := validateFormat(format); err != nil {
			return err
		}
		if grade == "" {
			grade = string(content.DefaultGrade)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		pipeline, provider, err := newPipeline(ctx, st)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := pipeline.Run(ctx, content.Grade(grade), topic)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		env := content.NewEnvelope(res)

		if !noSave {
			rec, err := env.Record(content.Grade(grade), topic, provider.ModelID(), time.Since(start))
			if err == nil {
				err = st.GenerationRepo().Save(ctx, rec)
			}
			if err != nil {
				slog.Warn("save generation", "id", env.ID, "error", err)
			}
		}

		return writeEnvelope(os.Stdout, env, format)
	},
}

func init() {
	generateCmd.Flags().StringP("grade", "g", string(content.DefaultGrade), "School grade (1-12)")
	generateCmd.Flags().StringP("topic", "t", "", "Topic to teach")
	generateCmd.Flags().StringP("format", "f", formatText, "Output format: text, json, yaml")
	generateCmd.Flags().Bool("no-save", false, "Do not record the run in history")
	_ = generateCmd.MarkFlagRequired("topic")
}
