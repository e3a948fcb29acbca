package sync

import (
	"context"
	"log"
)

// PollCommands fetches pending remote commands and applies each one
// against the engine's controller, acknowledging every command it
// handles - including ones whose type it does not recognize, so the
// server does not redeliver an unknown command forever.
func (e *Engine) PollCommands(ctx context.Context) error {
	commands, err := retry(ctx, e.networkAttempts, e.backoff, e.sleep, func() ([]Command, error) {
		return e.transport.GetCommands(ctx)
	})
	if err != nil {
		return wrapTransient(err)
	}

	for _, cmd := range commands {
		success, err := e.applyCommandOnce(ctx, cmd)
		if err != nil {
			return err
		}

		ackFn := func() (struct{}, error) {
			return struct{}{}, e.transport.AcknowledgeCommand(ctx, cmd.ID, success)
		}

		if _, err := retry(ctx, e.networkAttempts, e.backoff, e.sleep, ackFn); err != nil {
			return wrapTransient(err)
		}
	}

	return nil
}

// applyCommandOnce applies cmd, consulting the command log (if any) so
// a command already applied in a prior process run is not re-applied
// after a restart; it is instead re-acknowledged with its recorded
// outcome.
func (e *Engine) applyCommandOnce(ctx context.Context, cmd Command) (bool, error) {
	if e.commandLog == nil {
		return e.applyCommand(ctx, cmd), nil
	}

	prevSuccess, ok, err := e.commandLog.WasAcknowledged(ctx, cmd.ID)
	if err != nil {
		return false, err
	}

	if ok {
		return prevSuccess, nil
	}

	success := e.applyCommand(ctx, cmd)

	if err := e.commandLog.RecordCommandAck(ctx, cmd.ID, string(cmd.Type), success); err != nil {
		return false, err
	}

	return success, nil
}

// applyCommand executes a single remote command and reports whether it
// succeeded. Lock and wipe are both idempotent, so a command delivered
// twice needs no dedup state here: locking an already-locked session
// or wiping an already-wiped store is a no-op either way.
func (e *Engine) applyCommand(ctx context.Context, cmd Command) bool {
	switch cmd.Type {
	case CommandLock:
		e.controller.Lock()
		return true
	case CommandWipe:
		if err := e.controller.Wipe(ctx); err != nil {
			return false
		}

		return true
	default:
		log.Printf("sync: unrecognized remote command type %q for command %s", cmd.Type, cmd.ID)
		return false
	}
}
