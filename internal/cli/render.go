package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	sitebuilder "github.com/goliatone/go-site-builder"
)

const (
	formatJSON    = "json"
	formatOutline = "outline"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var from string
	var format string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Normalise a document and print its render tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatJSON && format != formatOutline {
				return exitCodeError(exitUsage, fmt.Errorf("unsupported format %q (want %s or %s)", format, formatJSON, formatOutline))
			}
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
			tree := module.Render(result.Document)

			if format == formatOutline {
				writeOutline(cmd.OutOrStdout(), tree)
				return nil
			}
			out, err := json.MarshalIndent(tree, "", "  ")
			if err != nil {
				return fmt.Errorf("encode render tree: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "file", "f", "", "Document JSON file, - for stdin")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or outline")

	return cmd
}

func writeOutline(w io.Writer, tree sitebuilder.RenderTree) {
	fmt.Fprintf(w, "%s %s (%d fragment(s))\n", tree.Type, tree.DocumentID, tree.Count())
	for _, fragment := range tree.Fragments {
		writeFragment(w, fragment, 1)
	}
}

func writeFragment(w io.Writer, fragment sitebuilder.Fragment, depth int) {
	line := strings.Repeat("  ", depth) + fragment.Component + " " + fragment.BlockID
	if fragment.Label != "" {
		line += fmt.Sprintf(" %q", fragment.Label)
	}
	if fragment.Unsupported {
		line += " [unsupported]"
	}
	if fragment.Broken {
		line += " [broken]"
	}
	fmt.Fprintln(w, line)
	for _, child := range fragment.Children {
		writeFragment(w, child, depth+1)
	}
}
