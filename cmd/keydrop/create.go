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

type CreateOptions struct {
	*RootOptions
}

var _ genericclioptions.CmdOptions = &CreateOptions{}

func NewCreateOptions(root *RootOptions) *CreateOptions {
	return &CreateOptions{RootOptions: root}
}

func (*CreateOptions) Complete() error { return nil }
func (*CreateOptions) Validate() error { return nil }

func (o *CreateOptions) Run(ctx context.Context, _ ...string) error {
	pass, err := input.PromptNewMasterPassword(o.Out, int(os.Stdin.Fd()), minPasswordLen)
	if err != nil {
		return err
	}
	defer cryptocore.Zeroize(pass)

	if err := o.controller.Create(ctx, pass); err != nil {
		return err
	}

	o.Infof("vault created at %s\n", o.dbPath)

	return nil
}

// NewCmdCreate creates the `create` cobra command.
func NewCmdCreate(root *RootOptions) *cobra.Command {
	o := NewCreateOptions(root)

	return &cobra.Command{
		Use:   "create",
		Short: "Initialize a new vault",
		Long:  "Create a new vault at the configured database path, protected by a freshly chosen master password.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}
}
