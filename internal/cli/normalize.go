package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/wire"
)

func newNormalizeCmd(opts *globalOptions) *cobra.Command {
	var from string
	var strict bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalise a document and print its canonical JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, from)
			if err != nil {
				return err
			}
			module, err := opts.openModule(nil)
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.Normalize(doc)
			if err != nil {
				return exitCodeError(exitInvalid, err)
			}
			reportResult(cmd.ErrOrStderr(), result)
			if strict && len(result.Issues) > 0 {
				return exitCodeError(exitInvalid, fmt.Errorf("document %s has %d validation issue(s)", result.Document.ID, len(result.Issues)))
			}

			out, err := wire.EncodeIndent(result.Document)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "file", "f", "", "Document JSON file, - for stdin")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the document carries validation issues")

	return cmd
}

func reportResult(w io.Writer, result *normalizer.Result) {
	if result == nil {
		return
	}
	for _, rename := range result.Renamed {
		fmt.Fprintf(w, "renamed %s: %s -> %s\n", rename.BlockID, rename.From, rename.To)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "issue %s: %s\n", issue.Code, issue.Error())
	}
}
