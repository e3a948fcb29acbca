package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
	"github.com/minsu-steven-kim/keydrop2/util"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

type SearchOptions struct {
	*RootOptions

	query       string
	categories  string
	showSecrets bool
}

var _ genericclioptions.CmdOptions = &SearchOptions{}

func NewSearchOptions(root *RootOptions) *SearchOptions {
	return &SearchOptions{RootOptions: root}
}

func (*SearchOptions) Complete() error { return nil }
func (*SearchOptions) Validate() error { return nil }

func (o *SearchOptions) Run(ctx context.Context, args ...string) error {
	if err := o.unlock(ctx); err != nil {
		return err
	}

	if len(o.query) == 0 && len(args) > 0 {
		o.query = strings.Join(args, " ")
	}

	var items []vault.Item

	err := o.controller.Do(func(v *vault.Vault) error {
		items = v.Search(o.query)
		return nil
	})
	if err != nil {
		return err
	}

	if cats := util.ParseCommaSeparated(o.categories); len(cats) > 0 {
		items = filterByCategory(items, cats)
	}

	if o.showSecrets && isatty.IsTerminal(os.Stdout.Fd()) {
		o.Warnf("showing plaintext passwords on a terminal, make sure nobody's watching\n")
	}

	printItems(o.Out, items, o.showSecrets)

	return nil
}

// filterByCategory keeps only items whose category case-insensitively
// matches one of cats.
func filterByCategory(items []vault.Item, cats []string) []vault.Item {
	filtered := items[:0]

	for _, it := range items {
		for _, c := range cats {
			if strings.EqualFold(it.Category, c) {
				filtered = append(filtered, it)
				break
			}
		}
	}

	return filtered
}

func printItems(w io.Writer, items []vault.Item, showSecrets bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if showSecrets {
		fmt.Fprintln(tw, "ID\tNAME\tUSERNAME\tPASSWORD\tURL\tCATEGORY")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tUSERNAME\tURL\tCATEGORY")
	}

	for _, it := range items {
		if showSecrets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Username, it.Password, it.URL, it.Category)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Username, it.URL, it.Category)
		}
	}
}

// NewCmdSearch creates the `search` cobra command.
func NewCmdSearch(root *RootOptions) *cobra.Command {
	o := NewSearchOptions(root)

	cmd := &cobra.Command{
		Use:     "search [query]",
		Aliases: []string{"find", "ls", "list"},
		Args:    cobra.ArbitraryArgs,
		Short:   "Search vault items",
		Long:    "Search non-deleted vault items by name, username, or url, case-insensitively. With no query, lists every item.",
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().StringVar(&o.query, "query", "", "search query (alternative to a positional argument)")
	cmd.Flags().StringVar(&o.categories, "categories", "", "comma-separated list of categories to restrict results to")
	cmd.Flags().BoolVar(&o.showSecrets, "show-secrets", false, "include passwords in the output (unsafe)")

	return cmd
}
