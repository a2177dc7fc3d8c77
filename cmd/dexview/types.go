package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the catalog's type vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.catalogClient()
			if err != nil {
				return err
			}

			tags, err := client.FetchTypeVocabulary(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch types: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, tag := range tags {
				fmt.Fprintln(out, tag.Name)
			}
			return nil
		},
	}
}
