package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduagent/internal/content"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously generated content",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.GenerationRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list generations: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No generations recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-5s  %-28s  %-6s  %-7s  %s\n",
			"ID", "Created", "Grade", "Topic", "Review", "Refined", "Ms")
		fmt.Println(strings.Repeat("─", 118))
		for _, r := range records {
			refined := ""
			if r.Refined {
				refined = "yes"
			}
			fmt.Printf("%-36s  %-16s  %-5s  %-28s  %-6s  %-7s  %d\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.Grade, 5),
				truncate(r.Topic, 28),
				r.ReviewStatus,
				refined,
				r.LatencyMs,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a stored generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.GenerationRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get generation: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("generation %s not found", args[0])
		}

		env, err := content.DecodeEnvelope(rec.Result)
		if err != nil {
			return err
		}

		if format == formatText {
			fmt.Printf("Grade %s · %s · %s\n\n", rec.Grade, rec.Topic,
				rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return writeEnvelope(os.Stdout, env, format)
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	historyViewCmd.Flags().StringP("format", "f", formatText, "Output format: text, json, yaml")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
}
