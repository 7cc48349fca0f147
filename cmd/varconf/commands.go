// FILE: lixenwraith/varconf/cmd/varconf/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/varconf"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value stored at a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(args[0])
			if err != nil {
				return err
			}
			key, err := varconf.ParseKey(args[1])
			if err != nil {
				return err
			}
			value, err := l.Lookup(key)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), value)
		},
	}
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Write a value at a key and save the file",
		Long: `Write a value at a key and save the file.

The key must already exist unless --create is given. With --json the value
is parsed as JSON, so numbers, booleans, lists and tables can be written.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(args[0])
			if err != nil {
				return err
			}
			key, err := varconf.ParseKey(args[1])
			if err != nil {
				return err
			}

			var value any = args[2]
			if asJSON {
				decoder := json.NewDecoder(strings.NewReader(args[2]))
				decoder.UseNumber()
				if err := decoder.Decode(&value); err != nil {
					return fmt.Errorf("value is not valid JSON: %w", err)
				}
			}

			if err := l.Set(key, value); err != nil {
				return err
			}
			return l.Dump(false)
		},
	}

	cmd.Flags().BoolVar(&opts.allowCreate, "create", false, "Create the key if it does not exist")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Parse the value as JSON")
	return cmd
}

func newDelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del <file> <key>",
		Short: "Remove a key and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(args[0])
			if err != nil {
				return err
			}
			key, err := varconf.ParseKey(args[1])
			if err != nil {
				return err
			}
			if err := l.Delete(key); err != nil {
				return err
			}
			return l.Dump(false)
		},
	}
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>...",
		Short: "Print the merged view of one or more files as JSON",
		Long: `Print the merged view of one or more files as JSON.

Earlier files take priority over later ones.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaders := make([]varconf.Loader, 0, len(args))
			for _, path := range args {
				l, err := opts.open(path)
				if err != nil {
					return err
				}
				loaders = append(loaders, l)
			}
			c, err := varconf.NewComposite(loaders)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), c.LookupData())
		},
	}
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys <file>",
		Short: "List every leaf key in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(args[0])
			if err != nil {
				return err
			}
			keys := varconf.Paths(l.LookupData())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
			return err
		},
	}
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var includeDefaults bool

	cmd := &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Copy a file into another format",
		Long: `Copy a file into another format, overwriting dst.

The source may be a composite of several files given as a comma separated
list; earlier files take priority.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loaders []varconf.Loader
			for _, path := range strings.Split(args[0], ",") {
				l, err := opts.open(path)
				if err != nil {
					return err
				}
				loaders = append(loaders, l)
			}

			var src varconf.Loader = loaders[0]
			if len(loaders) > 1 {
				c, err := varconf.NewComposite(loaders)
				if err != nil {
					return err
				}
				src = c
			}

			dst, err := varconf.Create(args[1], opts.loaderOptions()...)
			if err != nil {
				return err
			}
			return varconf.DumpTo(src, dst, includeDefaults)
		},
	}

	cmd.Flags().BoolVar(&includeDefaults, "defaults", false, "Include defaults in the output")
	return cmd
}
