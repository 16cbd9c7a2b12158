package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sitebuilder "github.com/goliatone/go-site-builder"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the document envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), string(sitebuilder.DocumentSchema()))
			return nil
		},
	}
}
