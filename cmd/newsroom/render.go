package main

import (
	"fmt"

	"github.com/dfryer1193/newsroom/internal/config"
	"github.com/spf13/cobra"
)

func newRenderCmd(cfg *config.Config) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "render <articleId>",
		Short: "Render an article to HTML",
		Long: `Loads an article, migrates legacy inline images to tokens and prints
the rendered HTML. With --markdown the normalized markdown is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			content, err := a.content.GetArticleContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if markdown {
				fmt.Fprint(cmd.OutOrStdout(), content.Markdown)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), content.ContentHTML)
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the normalized markdown instead of HTML")

	return cmd
}
