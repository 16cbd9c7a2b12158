package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sitebuilder "github.com/goliatone/go-site-builder"
	"github.com/goliatone/go-site-builder/internal/documents"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/runtimeconfig"
)

type storageFlags struct {
	dsn    string
	driver string
}

func (f *storageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dsn, "db", "", "Database DSN, overrides the configured storage")
	cmd.Flags().StringVar(&f.driver, "driver", runtimeconfig.DriverSQLite, "Driver used with --db: sqlite or postgres")
}

func (f *storageFlags) apply(cfg *sitebuilder.Config) {
	if strings.TrimSpace(f.dsn) == "" {
		return
	}
	cfg.Features.Storage = true
	cfg.Storage.Driver = runtimeconfig.NormalizeDriver(f.driver)
	cfg.Storage.DSN = f.dsn
	cfg.Storage.AutoMigrate = true
}

func newCommitCmd(opts *globalOptions) *cobra.Command {
	var from string
	var strict bool
	storage := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Normalise a document and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, from)
			if err != nil {
				return err
			}
			module, err := opts.openModule(func(cfg *sitebuilder.Config) {
				storage.apply(cfg)
				if strict {
					cfg.Storage.StrictValidation = true
				}
			})
			if err != nil {
				return err
			}
			defer module.Close()

			saved, err := module.Commit(commandContext(cmd), doc)
			switch {
			case errors.Is(err, documents.ErrVersionConflict):
				return exitCodeError(exitConflict, err)
			case errors.Is(err, documents.ErrValidationFailed), errors.Is(err, documents.ErrTypeChanged):
				return exitCodeError(exitInvalid, err)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %s %s at version %s\n", saved.Type, saved.ID, saved.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "file", "f", "", "Document JSON file, - for stdin")
	cmd.Flags().BoolVar(&strict, "strict", false, "Refuse documents that carry validation issues")
	storage.bind(cmd)
	return cmd
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var docType string
	storage := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.openModule(storage.apply)
			if err != nil {
				return err
			}
			defer module.Close()

			docs, err := module.Documents()
			if err != nil {
				return exitCodeError(exitUsage, err)
			}
			stored, err := docs.List(commandContext(cmd), sitebuilder.DocumentType(strings.ToLower(strings.TrimSpace(docType))))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tVERSION\tBLOCKS\tTITLE")
			for _, doc := range stored {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", doc.ID, doc.Type, doc.Version, len(doc.Blocks), doc.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&docType, "type", "", "Only list documents of this type")
	storage.bind(cmd)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.ContextWithFields(ctx, map[string]any{"cli_command": cmd.CommandPath()})
}
