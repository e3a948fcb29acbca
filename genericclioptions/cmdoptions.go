// Package genericclioptions provides the small option-struct protocol
// and I/O plumbing every keydrop command builds on.
package genericclioptions

import "context"

// CmdOptions defines the interface a command's option struct
// implements: prepare derived fields, validate flag combinations, then
// run.
type CmdOptions interface {
	Complete() error
	Validate() error
	Run(ctx context.Context, args ...string) error
}

// ExecuteCommand runs o through the complete/validate/run sequence,
// stopping at the first error.
func ExecuteCommand(ctx context.Context, o CmdOptions, args ...string) error {
	if err := o.Complete(); err != nil {
		return err
	}

	if err := o.Validate(); err != nil {
		return err
	}

	return o.Run(ctx, args...)
}
