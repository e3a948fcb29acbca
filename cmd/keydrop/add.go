package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/clipboard"
	"github.com/minsu-steven-kim/keydrop2/generator"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/input"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

type AddOptions struct {
	*RootOptions

	name     string
	username string
	password string
	url      string
	notes    string
	category string
	favorite bool

	generate bool
	copy     bool
}

var _ genericclioptions.CmdOptions = &AddOptions{}

func NewAddOptions(root *RootOptions) *AddOptions {
	return &AddOptions{RootOptions: root}
}

func (*AddOptions) Complete() error { return nil }
func (*AddOptions) Validate() error { return nil }

func (o *AddOptions) Run(ctx context.Context, _ ...string) error {
	if err := o.unlock(ctx); err != nil {
		return err
	}

	if err := o.fillMissing(); err != nil {
		return err
	}

	it := vault.Item{
		Name:     o.name,
		Username: o.username,
		Password: o.password,
		URL:      o.url,
		Notes:    o.notes,
		Category: o.category,
		Favorite: o.favorite,
	}

	var added vault.Item

	err := o.controller.Do(func(v *vault.Vault) error {
		var err error
		added, err = v.Add(it)
		return err
	})
	if err != nil {
		return err
	}

	if err := o.controller.Persist(ctx); err != nil {
		return err
	}

	o.Infof("added %q (%s)\n", added.Name, added.ID)

	if o.copy {
		clearAfter := clipboard.DefaultClearAfter
		if d, err := o.config.clearAfter(); err == nil && d > 0 {
			clearAfter = d
		}

		if err := clipboard.CopySecret(ctx, added.Password, clearAfter); err != nil {
			o.Warnf("could not copy password to clipboard: %v\n", err)
		}
	}

	return nil
}

func (o *AddOptions) fillMissing() error {
	if o.generate && len(o.password) == 0 {
		p, err := generator.Password(generator.DefaultPasswordOptions())
		if err != nil {
			return err
		}

		o.password = p
	}

	if len(o.name) == 0 {
		name, err := input.PromptRead(o.Out, o.In, "Name: ")
		if err != nil {
			return err
		}

		o.name = name
	}

	if len(o.username) == 0 {
		username, err := input.PromptRead(o.Out, o.In, "Username: ")
		if err != nil {
			return err
		}

		o.username = username
	}

	if len(o.password) == 0 {
		pass, err := input.PromptReadSecure(o.Out, int(os.Stdin.Fd()), "Password: ")
		if err != nil {
			return err
		}

		o.password = string(pass)
	}

	return nil
}

// NewCmdAdd creates the `add` cobra command.
func NewCmdAdd(root *RootOptions) *cobra.Command {
	o := NewAddOptions(root)

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"save", "put"},
		Short:   "Add a new vault item",
		Long:    "Add a new item to the vault. Name, username, and password are prompted for interactively when not given as flags; the other fields are set only from their flags.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "item name")
	cmd.Flags().StringVar(&o.username, "username", "", "item username")
	cmd.Flags().StringVar(&o.password, "password", "", "item password")
	cmd.Flags().StringVar(&o.url, "url", "", "item url")
	cmd.Flags().StringVar(&o.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&o.category, "category", "", "category name")
	cmd.Flags().BoolVar(&o.favorite, "favorite", false, "mark as favorite")
	cmd.Flags().BoolVarP(&o.generate, "generate", "g", false, "generate a random password")
	cmd.Flags().BoolVarP(&o.copy, "copy-clipboard", "c", false, "copy the password to the clipboard")

	return cmd
}
