package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/input"
)

type UnlockOptions struct {
	*RootOptions

	enableBiometric bool
}

var _ genericclioptions.CmdOptions = &UnlockOptions{}

func NewUnlockOptions(root *RootOptions) *UnlockOptions {
	return &UnlockOptions{RootOptions: root}
}

func (*UnlockOptions) Complete() error { return nil }
func (*UnlockOptions) Validate() error { return nil }

// Run authenticates once against the vault and, if requested, enrolls
// the platform keystore so future commands can skip the password
// prompt via [session.Controller.UnlockWithBiometric].
func (o *UnlockOptions) Run(ctx context.Context, _ ...string) error {
	pass, err := input.PromptMasterPassword(o.Out, int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer cryptocore.Zeroize(pass)

	if err := o.controller.Unlock(ctx, pass); err != nil {
		return err
	}

	if !o.enableBiometric {
		o.Infof("vault unlocked\n")
		return nil
	}

	if err := o.controller.EnableBiometric(ctx); err != nil {
		return err
	}

	o.Infof("vault unlocked, biometric unlock enabled\n")

	return nil
}

// NewCmdUnlock creates the `unlock` cobra command.
func NewCmdUnlock(root *RootOptions) *cobra.Command {
	o := NewUnlockOptions(root)

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Authenticate against the vault",
		Long:  "Authenticate with the master password. With --biometric, also enrolls the platform keystore so subsequent commands can unlock without a password prompt.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().BoolVar(&o.enableBiometric, "biometric", false, "enroll biometric unlock for future commands")

	return cmd
}
