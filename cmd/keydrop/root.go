package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clipboard"
	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/input"
	"github.com/minsu-steven-kim/keydrop2/keydropstore"
	"github.com/minsu-steven-kim/keydrop2/session"
)

const minPasswordLen = 12

// RootOptions holds everything every subcommand needs: its streams, the
// loaded config, and (once Complete has run) an open store and a
// locked controller. Each invocation of the binary is its own process;
// nothing here survives past the command that builds it.
type RootOptions struct {
	genericclioptions.IOStreams

	configPath string
	dbPath     string

	config     *Config
	store      *keydropstore.Store
	controller *session.Controller
}

func NewRootOptions(streams genericclioptions.IOStreams) *RootOptions {
	return &RootOptions{IOStreams: streams}
}

func (o *RootOptions) Complete() error {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	o.config = cfg

	if cfg.Clipboard != nil && len(cfg.Clipboard.CopyCmd) > 0 {
		clipboard.SetDefault(clipboard.New(
			clipboard.WithCopyCmd(cfg.Clipboard.CopyCmd),
			clipboard.WithPasteCmd(cfg.Clipboard.PasteCmd),
		))
	}

	if len(o.dbPath) == 0 {
		path, err := cfg.dbPath()
		if err != nil {
			return err
		}

		o.dbPath = path
	}

	store, err := keydropstore.New(o.dbPath)
	if err != nil {
		return err
	}

	o.store = store

	var opts []session.Opt

	if timeout, err := cfg.autoLockTimeout(); err != nil {
		return err
	} else if timeout > 0 {
		opts = append(opts, session.WithAutoLockTimeout(timeout))
	}

	o.controller = session.New(store, opts...)

	return nil
}

func (*RootOptions) Validate() error {
	return nil
}

// unlock authenticates against the open vault, preferring a previously
// enrolled biometric slot and falling back to an interactive master
// password prompt.
func (o *RootOptions) unlock(ctx context.Context) error {
	if err := o.controller.UnlockWithBiometric(ctx); err == nil {
		return nil
	}

	pass, err := input.PromptMasterPassword(o.Out, int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer cryptocore.Zeroize(pass)

	return o.controller.Unlock(ctx, pass)
}

func setupLogging(verbose bool) {
	log.SetFlags(0)

	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
}

// NewRootCommand builds the `keydrop` command tree.
func NewRootCommand(streams genericclioptions.IOStreams, args []string) *cobra.Command {
	o := NewRootOptions(streams)

	cmd := &cobra.Command{
		Use:           "keydrop",
		Short:         "zero-knowledge password vault",
		Long:          "keydrop is a command-line password manager: every secret is encrypted client-side before it ever touches disk or the sync server.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			setupLogging(o.Verbose)
			return o.Complete()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if o.store == nil {
				return nil
			}

			return o.store.Close()
		},
	}

	cmd.SetArgs(args)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)

	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&o.dbPath, "db", "", "path to the vault database (default: ~/.keydrop.db)")
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "path to the keydrop config file")

	cmd.AddCommand(
		NewCmdCreate(o),
		NewCmdUnlock(o),
		NewCmdLock(o),
		NewCmdAdd(o),
		NewCmdSearch(o),
		NewCmdRemove(o),
		NewCmdSync(o),
		NewCmdGenerate(o),
		NewCmdWatch(o),
	)

	return cmd
}

func MustInitialize() *cobra.Command {
	return NewRootCommand(*genericclioptions.NewDefaultIOStreams(), os.Args[1:])
}

func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
