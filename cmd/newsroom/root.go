package main

import (
	"github.com/dfryer1193/newsroom/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "newsroom",
		Short: "Article content service for the student newspaper",
		Long: `Newsroom resolves stored article markdown into render-ready HTML.

Inline image tokens are replaced with figure markup, legacy markdown images
are migrated to tokens, and featured images are resolved for listings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			loaded.ConfigureLogging()
			*cfg = *loaded
			return nil
		},
	}

	cfg = &config.Config{}
	cmd.AddCommand(
		newServeCmd(cfg),
		newRenderCmd(cfg),
		newFeaturedCmd(cfg),
	)

	return cmd
}
