package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsu-steven-kim/keydrop2/clierror"
	"github.com/minsu-steven-kim/keydrop2/clipboard"
	"github.com/minsu-steven-kim/keydrop2/generator"
	"github.com/minsu-steven-kim/keydrop2/genericclioptions"
)

type GenerateOptions struct {
	*RootOptions

	length           int
	noLower          bool
	noUpper          bool
	noDigits         bool
	noSymbols        bool
	excludeAmbiguous bool
	excludeChars     string

	passphrase bool
	wordCount  int
	separator  string

	copy bool
}

var _ genericclioptions.CmdOptions = &GenerateOptions{}

func NewGenerateOptions(root *RootOptions) *GenerateOptions {
	return &GenerateOptions{RootOptions: root}
}

func (*GenerateOptions) Complete() error { return nil }
func (*GenerateOptions) Validate() error { return nil }

func (o *GenerateOptions) Run(ctx context.Context, _ ...string) error {
	var (
		s   string
		err error
	)

	if o.passphrase {
		opts := generator.DefaultPassphraseOptions()
		if o.wordCount > 0 {
			opts.WordCount = o.wordCount
		}

		if len(o.separator) > 0 {
			opts.Separator = o.separator
		}

		s, err = generator.Passphrase(opts)
	} else {
		opts := generator.DefaultPasswordOptions()
		if o.length > 0 {
			opts.Length = o.length
		}

		if o.noLower {
			opts.Lowercase = false
		}

		if o.noUpper {
			opts.Uppercase = false
		}

		if o.noDigits {
			opts.Digits = false
		}

		if o.noSymbols {
			opts.Symbols = false
		}

		opts.ExcludeAmbiguous = o.excludeAmbiguous
		opts.ExcludeChars = o.excludeChars

		s, err = generator.Password(opts)
	}

	if err != nil {
		return err
	}

	if o.copy {
		clearAfter := clipboard.DefaultClearAfter
		if d, cerr := o.config.clearAfter(); cerr == nil && d > 0 {
			clearAfter = d
		}

		if err := clipboard.CopySecret(ctx, s, clearAfter); err != nil {
			return err
		}

		o.Infof("copied to clipboard\n")

		return nil
	}

	o.Printf("%s\n", s)

	return nil
}

// NewCmdGenerate creates the `generate` cobra command.
func NewCmdGenerate(root *RootOptions) *cobra.Command {
	o := NewGenerateOptions(root)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a random password or passphrase",
		Long: fmt.Sprintf(`Generate a random password using the secure RNG. By default it produces a
%d-character password drawing from lowercase, uppercase, digits, and symbols.

With --passphrase it instead draws %d words from a fixed word list, joined with %q.`,
			generator.DefaultPasswordOptions().Length,
			generator.DefaultWordCount,
			generator.DefaultSeparator,
		),
		Run: func(cmd *cobra.Command, args []string) {
			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().IntVarP(&o.length, "length", "l", 0, "password length (default 20)")
	cmd.Flags().BoolVar(&o.noLower, "no-lower", false, "exclude lowercase letters")
	cmd.Flags().BoolVar(&o.noUpper, "no-upper", false, "exclude uppercase letters")
	cmd.Flags().BoolVar(&o.noDigits, "no-digits", false, "exclude digits")
	cmd.Flags().BoolVar(&o.noSymbols, "no-symbols", false, "exclude symbols")
	cmd.Flags().BoolVar(&o.excludeAmbiguous, "exclude-ambiguous", false, "exclude visually ambiguous characters (0, O, l, 1, I)")
	cmd.Flags().StringVar(&o.excludeChars, "exclude-chars", "", "additional characters to exclude")

	cmd.Flags().BoolVarP(&o.passphrase, "passphrase", "p", false, "generate a word-based passphrase instead")
	cmd.Flags().IntVar(&o.wordCount, "words", 0, "passphrase word count (default 4)")
	cmd.Flags().StringVar(&o.separator, "separator", "", "passphrase word separator (default \"-\")")

	cmd.Flags().BoolVarP(&o.copy, "copy-clipboard", "c", false, "copy the generated secret to the clipboard instead of printing it")

	return cmd
}
