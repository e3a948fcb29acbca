package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
)

type LockOptions struct {
	*RootOptions

	wipe bool
}

var _ genericclioptions.CmdOptions = &LockOptions{}

func NewLockOptions(root *RootOptions) *LockOptions {
	return &LockOptions{RootOptions: root}
}

func (*LockOptions) Complete() error { return nil }
func (*LockOptions) Validate() error { return nil }

// Run clears any enrolled biometric slot, forcing the next command to
// require the master password again. With --wipe it instead purges
// every locally persisted artifact, as if the client had never been
// initialized.
func (o *LockOptions) Run(ctx context.Context, _ ...string) error {
	if o.wipe {
		if err := o.controller.Wipe(ctx); err != nil {
			return err
		}

		o.Infof("local vault data wiped\n")

		return nil
	}

	if err := o.controller.DisableBiometric(ctx); err != nil {
		return err
	}

	o.Infof("biometric unlock disabled, master password required next time\n")

	return nil
}

// NewCmdLock creates the `lock` cobra command.
func NewCmdLock(root *RootOptions) *cobra.Command {
	o := NewLockOptions(root)

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Disable biometric unlock, or wipe local vault data",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().BoolVar(&o.wipe, "wipe", false, "purge all locally persisted vault data")

	return cmd
}
