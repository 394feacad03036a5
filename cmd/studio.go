package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/eduagent/internal/studio"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Open the interactive terminal studio",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		return studio.Run(ctx, studio.Options{
			Pipeline:    pipeline,
			Generations: st.GenerationRepo(),
			Model:       provider.ModelID(),
		})
	},
}
