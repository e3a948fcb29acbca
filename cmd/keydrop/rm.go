package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/input"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

var ErrAmbiguousName = errors.New("multiple items match that name, use the id instead")

type RemoveOptions struct {
	*RootOptions

	name      string
	assumeYes bool
}

var _ genericclioptions.CmdOptions = &RemoveOptions{}

func NewRemoveOptions(root *RootOptions) *RemoveOptions {
	return &RemoveOptions{RootOptions: root}
}

func (*RemoveOptions) Complete() error { return nil }

func (o *RemoveOptions) Validate() error {
	return nil
}

func (o *RemoveOptions) Run(ctx context.Context, args ...string) error {
	if err := o.unlock(ctx); err != nil {
		return err
	}

	id, it, err := o.resolveID(args)
	if err != nil {
		return err
	}

	if !o.assumeYes {
		yes, err := confirm(o.Out, o.In, "Delete %q (%s)? (y/N): ", it.Name, id)
		if err != nil {
			return err
		}

		if !yes {
			o.Infof("aborted\n")
			return nil
		}
	}

	err = o.controller.Do(func(v *vault.Vault) error {
		_, err := v.Delete(id)
		return err
	})
	if err != nil {
		return err
	}

	if err := o.controller.Persist(ctx); err != nil {
		return err
	}

	o.Infof("deleted %q\n", it.Name)

	return nil
}

// resolveID accepts either a positional item id, or falls back to
// --name, which must match exactly one non-deleted item.
func (o *RemoveOptions) resolveID(args []string) (uuid.UUID, vault.Item, error) {
	if len(args) > 0 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return uuid.UUID{}, vault.Item{}, fmt.Errorf("invalid item id %q: %w", args[0], err)
		}

		var (
			it vault.Item
			ok bool
		)

		if derr := o.controller.Do(func(v *vault.Vault) error {
			it, ok = v.Get(id)
			return nil
		}); derr != nil {
			return uuid.UUID{}, vault.Item{}, derr
		}

		if !ok {
			return uuid.UUID{}, vault.Item{}, fmt.Errorf("no item with id %q", args[0])
		}

		return id, it, nil
	}

	if len(o.name) == 0 {
		return uuid.UUID{}, vault.Item{}, errors.New("provide an item id, or --name")
	}

	var matches []vault.Item

	if err := o.controller.Do(func(v *vault.Vault) error {
		for _, it := range v.Search(o.name) {
			if strings.EqualFold(it.Name, o.name) {
				matches = append(matches, it)
			}
		}

		return nil
	}); err != nil {
		return uuid.UUID{}, vault.Item{}, err
	}

	switch len(matches) {
	case 0:
		return uuid.UUID{}, vault.Item{}, fmt.Errorf("no item named %q", o.name)
	case 1:
		return matches[0].ID, matches[0], nil
	default:
		return uuid.UUID{}, vault.Item{}, ErrAmbiguousName
	}
}

func confirm(out io.Writer, in io.Reader, prompt string, a ...any) (bool, error) {
	response, err := input.PromptRead(out, in, prompt, a...)
	if err != nil {
		return false, err
	}

	normalized := strings.ToLower(strings.TrimSpace(response))

	return slices.Contains([]string{"y", "yes"}, normalized), nil
}

// NewCmdRemove creates the `rm` cobra command.
func NewCmdRemove(root *RootOptions) *cobra.Command {
	o := NewRemoveOptions(root)

	cmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"remove", "delete"},
		Args:    cobra.MaximumNArgs(1),
		Short:   "Soft-delete a vault item",
		Long:    "Soft-delete an item by id, or by --name if it uniquely identifies one item. A deleted item is tombstoned, never resurrected.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "item name, used when no id is given")
	cmd.Flags().BoolVarP(&o.assumeYes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
