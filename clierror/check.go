// Package clierror centralizes how command errors reach the terminal:
// a stable mapping from the core's sentinel errors to a one-line,
// user-facing message, plus a pluggable handler so tests can capture
// what would otherwise exit the process.
package clierror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/session"
)

const DefaultErrorExitCode = 1

var (
	// errHandler is the function used to handle CLI errors.
	errHandler = FatalErrHandler

	// errWriter is used to output CLI error messages.
	errWriter io.Writer = os.Stderr

	// fprintf is the function used to format and print errors.
	fprintf = fmt.Fprintf

	// debugMode enables always printing the raw error alongside the
	// friendly message.
	debugMode bool
)

// SetErrorHandler overrides the default [FatalErrHandler].
func SetErrorHandler(f func(string, int)) {
	errHandler = f
}

// ResetErrorHandler restores the default error handler.
func ResetErrorHandler() {
	errHandler = FatalErrHandler
}

// SetErrWriter overrides the default error output writer [os.Stderr].
func SetErrWriter(w io.Writer) {
	errWriter = w
}

// ResetErrWriter restores the default error output writer to [os.Stderr].
func ResetErrWriter() {
	errWriter = os.Stderr
}

// DebugMode sets whether raw error values are printed to stderr
// alongside the friendly message.
func DebugMode(enabled bool) {
	debugMode = enabled
}

// FatalErrHandler prints msg and exits with code.
func FatalErrHandler(msg string, code int) {
	printError(msg)

	//nolint:revive // intentional exit after a fatal command error
	os.Exit(code)
}

// PrintErrHandler prints msg without exiting; used by tests.
func PrintErrHandler(msg string, _ int) {
	printError(msg)
}

func printError(msg string) {
	if len(msg) == 0 {
		return
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	_, _ = fprintf(errWriter, msg)
}

func debugPrint(err error) {
	if !debugMode {
		return
	}

	_, _ = fprintf(errWriter, "debug: %+v\n", err)
}

// ErrExit may be returned by a command to mean "exit nonzero, but
// print nothing further" - the command has already reported itself.
var ErrExit = errors.New("exit")

// Check prints a user-friendly message for err and invokes the
// configured handler. With [FatalErrHandler] the process exits before
// Check returns.
func Check(err error) error {
	check(err, errHandler)
	return err
}

func check(err error, handle func(string, int)) {
	if err == nil {
		return
	}

	debugPrint(err)

	switch {
	case errors.Is(err, ErrExit):
		handle("", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrAlreadyExists):
		handle("keydrop: a vault already exists at this location\nuse `keydrop unlock` or delete the file before running `create` again.", DefaultErrorExitCode)
	case errors.Is(err, session.ErrNoContainer):
		handle("keydrop: no vault found at this location\nrun `keydrop create` first.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrUnauthorized):
		handle("keydrop: incorrect master password.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrLocked):
		handle("keydrop: vault is locked\nrun `keydrop unlock` first.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrGone):
		handle("keydrop: that item has already been deleted.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrInvalidPolicy):
		handle("keydrop: "+err.Error()+".", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrBiometricUnavailable):
		handle("keydrop: biometric unlock is not available on this device.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrNetworkUnavailable):
		handle("keydrop: could not reach the sync server, check your connection and try again.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrSyncConflictUnresolved):
		handle("keydrop: sync could not converge on a conflicting item, try again.", DefaultErrorExitCode)
	case errors.Is(err, keydroperrors.ErrStorageError):
		handle("keydrop: local storage error: "+err.Error(), DefaultErrorExitCode)
	default:
		msg := err.Error()
		if !strings.HasPrefix(msg, "keydrop: ") {
			msg = "keydrop: " + msg
		}

		handle(msg, DefaultErrorExitCode)
	}
}
