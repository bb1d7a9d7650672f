package main

import (
	"encoding/json"
	"fmt"

	"github.com/dfryer1193/newsroom/api"
	"github.com/dfryer1193/newsroom/internal/config"
	"github.com/spf13/cobra"
)

func newFeaturedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "featured <articleId>",
		Short: "Print the featured image resolved for an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			image, err := a.content.ResolveFeaturedImageForArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if image == nil {
				return fmt.Errorf("article %s has no featured image", args[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.NewImage(image))
		},
	}
}
