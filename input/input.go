// Package input wraps terminal prompting: a plain line read for names
// and confirmations, and a secure, echo-free read for master passwords.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/term"
)

// ErrPasswordMismatch is returned by [PromptNewMasterPassword] when the
// confirmation retype does not match the first entry.
var ErrPasswordMismatch = errors.New("passwords do not match")

// PromptRead prompts via w and reads one line from r.
func PromptRead(w io.Writer, r io.Reader, prompt string, a ...any) (string, error) {
	fmt.Fprintf(w, prompt, a...)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("prompt read: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// PromptReadSecure prompts via w and reads one line from fd with
// terminal echo disabled.
func PromptReadSecure(w io.Writer, fd int, prompt string, a ...any) ([]byte, error) {
	fmt.Fprintf(w, prompt, a...)
	defer fmt.Fprintln(w)

	b, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	return b, nil
}

// PromptMasterPassword reads the vault's existing master password once.
func PromptMasterPassword(w io.Writer, fd int) ([]byte, error) {
	return PromptReadSecure(w, fd, "Enter master password: ")
}

// PromptNewMasterPassword reads a new master password, enforcing a
// minimum length and requiring the user to retype it for confirmation.
func PromptNewMasterPassword(w io.Writer, fd int, minLength int) ([]byte, error) {
	var pass []byte

	for len(pass) < minLength {
		p, err := PromptReadSecure(w, fd, "Enter new master password: ")
		if err != nil {
			return nil, fmt.Errorf("prompt new master password: %w", err)
		}

		pass = p

		if len(pass) < minLength {
			fmt.Fprintf(w, "Master password must be at least %d characters. Please try again.\n", minLength)
		}
	}

	confirm, err := PromptReadSecure(w, fd, "Retype master password: ")
	if err != nil {
		return nil, fmt.Errorf("prompt new master password: %w", err)
	}

	if slices.Compare(confirm, pass) != 0 {
		fmt.Fprintln(w, "Passwords do not match. Please try again.")
		return nil, ErrPasswordMismatch
	}

	return pass, nil
}
