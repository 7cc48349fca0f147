// FILE: lixenwraith/varconf/cmd/varconf/root.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/varconf"
)

type rootOptions struct {
	verbose     bool
	jsonLogs    bool
	allowCreate bool
	indent      int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "varconf",
		Short: "Inspect and edit JSON, YAML and TOML configuration files",
		Long: `varconf reads and writes configuration files by key path.

Keys are slash separated ("server/tls/cert"). The file format follows the
extension: .json, .yaml/.yml or .toml/.tml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose, opts.jsonLogs, cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Output logs in JSON format")
	root.PersistentFlags().IntVar(&opts.indent, "indent", varconf.DefaultIndent, "Indentation used when writing files")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newGetCmd(opts),
		newSetCmd(opts),
		newDelCmd(opts),
		newDumpCmd(opts),
		newKeysCmd(opts),
		newConvertCmd(opts),
	)
	return root
}

// setupLogging installs the default slog logger used by the library.
func setupLogging(verbose, jsonOutput bool, w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func (o *rootOptions) loaderOptions() []varconf.LoaderOption {
	opts := []varconf.LoaderOption{varconf.WithIndent(o.indent)}
	if o.allowCreate {
		opts = append(opts, varconf.WithAllowCreate())
	}
	return opts
}

func (o *rootOptions) open(path string) (varconf.Loader, error) {
	return varconf.Open(path, o.loaderOptions()...)
}

// printValue writes strings as-is and everything else as indented JSON.
func printValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render value: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
