package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sitebuilder "github.com/goliatone/go-site-builder"
	"github.com/goliatone/go-site-builder/internal/templates"
	"github.com/goliatone/go-site-builder/internal/wire"
)

func newTemplatesCmd(opts *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and instantiate document templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Additional directory of markdown templates")

	withDir := func(cfg *sitebuilder.Config) {
		if strings.TrimSpace(dir) != "" {
			cfg.Features.Templates = true
			cfg.Templates.Dir = dir
		}
	}

	cmd.AddCommand(newTemplatesListCmd(opts, withDir))
	cmd.AddCommand(newTemplatesInstantiateCmd(opts, withDir))
	return cmd
}

func newTemplatesListCmd(opts *globalOptions, mutate func(*sitebuilder.Config)) *cobra.Command {
	var docType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.openModule(mutate)
			if err != nil {
				return err
			}
			defer module.Close()

			entries := module.Templates(sitebuilder.DocumentType(strings.ToLower(strings.TrimSpace(docType))))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tNAME\tBLOCKS")
			for _, tpl := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", tpl.ID, tpl.Type, tpl.Name, len(tpl.Blocks))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&docType, "type", "", "Only list templates of this document type")
	return cmd
}

func newTemplatesInstantiateCmd(opts *globalOptions, mutate func(*sitebuilder.Config)) *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "instantiate <template-id>",
		Short: "Build a normalised document from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.openModule(mutate)
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.Instantiate(args[0], documentID)
			if err != nil {
				if errors.Is(err, templates.ErrTemplateNotFound) {
					return exitCodeError(exitUsage, err)
				}
				return err
			}
			reportResult(cmd.ErrOrStderr(), result)
			out, err := wire.EncodeIndent(result.Document)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&documentID, "id", "", "Document id for the new document")
	return cmd
}
