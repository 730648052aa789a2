// Package input reads the requested sequence length from an interactive
// console, re-prompting until a value inside a closed range is entered.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// Accepted sequence lengths. The upper bound keeps naive recursion tractable.
const (
	MinSequenceLength = 1
	MaxSequenceLength = 64
)

const (
	// Prompt is written before every read attempt.
	Prompt = "Enter some integer: "
	// PauseMessage is written by Pause.
	PauseMessage = "Enter To Exit"
)

var validate = validator.New()

// Reader prompts for bounded integers on a console.
type Reader struct {
	in  *bufio.Reader
	out io.Writer

	// Min and Max are the inclusive bounds of an accepted value.
	Min, Max int
	// MaxAttempts limits the number of invalid entries. Zero means retry
	// forever.
	MaxAttempts int
}

// NewReader creates a Reader for the default sequence-length bounds.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{
		in:  bufio.NewReader(in),
		out: out,
		Min: MinSequenceLength,
		Max: MaxSequenceLength,
	}
}

// ReadBoundedInteger prompts until a base-10 integer within [Min, Max] is
// entered and returns it. Invalid entries print a diagnostic and re-prompt.
//
// It returns apperrors.ErrNoInput when the stream ends or fails before a
// valid value is read, apperrors.ErrTooManyAttempts when MaxAttempts invalid
// entries were seen, and ctx.Err() when ctx ends between attempts.
func (r *Reader) ReadBoundedInteger(ctx context.Context) (int, error) {
	rule := fmt.Sprintf("min=%d,max=%d", r.Min, r.Max)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprint(r.out, Prompt)

		line, readErr := r.in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			fmt.Fprintln(r.out)
			return 0, fmt.Errorf("%w: %v", apperrors.ErrNoInput, readErr)
		}
		if readErr != nil && line == "" {
			fmt.Fprintln(r.out)
			return 0, apperrors.ErrNoInput
		}

		if n, ok := r.parse(line, rule); ok {
			return n, nil
		}
		fmt.Fprintf(r.out, "You did not enter a valid integer. The number must be between %d and %d\n", r.Min, r.Max)

		if r.MaxAttempts > 0 && attempt >= r.MaxAttempts {
			return 0, fmt.Errorf("%w: %d invalid entries", apperrors.ErrTooManyAttempts, attempt)
		}
		if readErr != nil {
			return 0, apperrors.ErrNoInput
		}
	}
}

func (r *Reader) parse(line, rule string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	if err := validate.Var(n, rule); err != nil {
		return 0, false
	}
	return n, true
}

// Pause prints a blank line and PauseMessage, then waits for one line.
// End of stream is treated as acknowledgement.
func (r *Reader) Pause() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, PauseMessage)
	_, _ = r.in.ReadString('\n')
}
