package main

import (
	"fmt"
	"io"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/config"
	"github.com/brettbedarf/externals/fspath"
	"github.com/brettbedarf/externals/internal/util"
	"github.com/brettbedarf/externals/seed"
	"github.com/spf13/cobra"
)

// app carries state shared by every command once flags are parsed
type app struct {
	configPath string
	verbose    int

	cfg *config.Config
	fs  *fspath.FS

	// openFS builds the backend from the resolved config; swapped in tests
	openFS func(cfg *config.Config) *fspath.FS
	// sources decodes seed definitions; nil means the built-ins
	sources *seed.Registry
}

func newApp() *app {
	return &app{openFS: fspath.NewFS}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "externals",
		Short: "Navigate and edit files through the externals path abstraction",
		Long: `externals exposes the path contract over the local filesystem.

Use locate to find the nearest ancestor-level file or directory with a
given name, the way tools discover a .git directory or a project marker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a yaml or json config file")
	cmd.PersistentFlags().IntVarP(&a.verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")

	cmd.AddCommand(newLocateCmd(a), newLsCmd(a), newCatCmd(a), newWriteCmd(a), newSeedCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if a.configPath != "" {
		override, err := config.LoadConfigOverrideFile(a.configPath)
		if err != nil {
			return err
		}
		cfg.Merge(override)
	}
	// an explicit flag wins over the config file
	if cmd.Flags().Changed("verbose") {
		cfg.Merge(&config.ConfigOverride{Verbose: &a.verbose})
	}

	util.InitializeLoggerTo(cmd.ErrOrStderr(), cfg.LogLvl)
	util.GetLogger("cli").Debug().Str("config", a.configPath).Msg("Configuration resolved")

	a.cfg = cfg
	a.fs = a.openFS(cfg)
	return nil
}

func newLocateCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "locate NAME",
		Short: "Find NAME in the start directory or the nearest ancestor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.fs.Path(from)
			if err != nil {
				return err
			}
			found, err := externals.Locate(start, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), found.String())
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", ".", "Directory to start searching from")
	return cmd
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List the children of PATH, directories suffixed with /",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			p, err := a.fs.Path(target)
			if err != nil {
				return err
			}
			if !p.IsDir() {
				return externals.NewNotFound("ls", p.String(), nil)
			}
			out := cmd.OutOrStdout()
			for _, name := range externals.Names(p) {
				if p.Child(name).IsDir() {
					name += externals.Separator
				}
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat PATH",
		Short: "Print the content of the file at PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.fs.Path(args[0])
			if err != nil {
				return err
			}
			return p.ReadableStream(func(r externals.ReadStream) error {
				_, err := io.Copy(cmd.OutOrStdout(), r)
				return err
			})
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write PATH",
		Short: "Replace the content of PATH with stdin, creating parents as needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.fs.Path(args[0])
			if err != nil {
				return err
			}
			return p.WritableStream(func(w io.Writer) error {
				_, err := io.Copy(w, cmd.InOrStdin())
				return err
			})
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var into string
	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Create the files described by a yaml or json tree definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.sources == nil {
				a.sources = seed.DefaultRegistry()
			}
			entries, err := seed.Load(args[0], a.sources)
			if err != nil {
				return err
			}
			base, err := a.fs.Path(into)
			if err != nil {
				return err
			}
			return seed.Apply(cmd.Context(), base, entries)
		},
	}
	cmd.Flags().StringVar(&into, "into", ".", "Directory the definition's paths are relative to")
	return cmd
}
