package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sitebuilder "github.com/goliatone/go-site-builder"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the sitebuilder root command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "sitebuilder",
		Short:         "Build, validate and render structured site documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable runtime logging")

	cmd.AddCommand(newNormalizeCmd(opts))
	cmd.AddCommand(newRenderCmd(opts))
	cmd.AddCommand(newTemplatesCmd(opts))
	cmd.AddCommand(newCommitCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func (o *globalOptions) loadConfig() (sitebuilder.Config, error) {
	cfg := sitebuilder.DefaultConfig()
	if strings.TrimSpace(o.configPath) != "" {
		loaded, err := sitebuilder.LoadConfig(o.configPath)
		if err != nil {
			return sitebuilder.Config{}, err
		}
		cfg = loaded
	}
	if o.verbose {
		cfg.Features.Logger = true
	}
	return cfg, nil
}

// openModule loads the configuration, applies mutate and constructs a module.
func (o *globalOptions) openModule(mutate func(*sitebuilder.Config)) (*sitebuilder.Module, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, exitCodeError(exitUsage, err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := sitebuilder.New(cfg)
	if err != nil {
		return nil, exitCodeError(exitUsage, err)
	}
	return module, nil
}

func readDocument(cmd *cobra.Command, path string) (sitebuilder.Document, error) {
	if strings.TrimSpace(path) == "" {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return sitebuilder.Document{}, exitCodeError(exitUsage, fmt.Errorf("required flag(s) \"file\" not set"))
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return sitebuilder.Document{}, fmt.Errorf("read document: %w", err)
	}

	doc, err := sitebuilder.DecodeDocument(data)
	if err != nil {
		return sitebuilder.Document{}, exitCodeError(exitInvalid, err)
	}
	return doc, nil
}
