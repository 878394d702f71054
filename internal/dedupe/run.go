package dedupe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bimmerbailey/memsift/internal/config"
)

// Observer is invoked after each input line with the running line count.
// Observers are passive: they must not alter processing order or outcome.
type Observer func(lines int)

// RunBatch filters a fully-buffered input: it reads every line, pre-scans
// for the last marker occurrence, and runs the engine over what follows it.
// The marker line itself is excluded from output. With no marker found (or
// keep-all set) the entire input is one epoch.
func RunBatch(r io.Reader, opts config.Options, limits config.Limits, emit EmitFunc, obs Observer) (Summary, error) {
	lines, err := readLines(r, limits, obs)
	if err != nil {
		return Summary{}, err
	}

	start := 0
	markers := 0
	if !opts.KeepAll {
		for i, line := range lines {
			if strings.Contains(line, opts.Marker) {
				markers++
				start = i + 1
			}
		}
	}

	eng := New(opts, limits, ModeBatch, emit)
	for _, line := range lines[start:] {
		if err := eng.Feed(line); err != nil {
			return eng.Summary(), err
		}
	}
	if err := eng.Flush(); err != nil {
		return eng.Summary(), err
	}

	sum := eng.Summary()
	sum.Lines = len(lines)
	sum.Epochs = markers
	return sum, nil
}

// RunStream filters the input incrementally without materializing it: the
// engine buffers accepted blocks and discards them whenever the marker
// reappears, so only the final epoch is emitted at end-of-input.
func RunStream(r io.Reader, opts config.Options, limits config.Limits, emit EmitFunc, obs Observer) (Summary, error) {
	eng := New(opts, limits, ModeStream, emit)

	scanner := newScanner(r, limits)
	n := 0
	for scanner.Scan() {
		n++
		if err := eng.Feed(scanner.Text()); err != nil {
			return eng.Summary(), err
		}
		if obs != nil {
			obs(n)
		}
	}
	if err := scanner.Err(); err != nil {
		return eng.Summary(), scanError(err, limits)
	}
	if err := eng.Flush(); err != nil {
		return eng.Summary(), err
	}
	return eng.Summary(), nil
}

// readLines buffers the whole input, enforcing the per-line limit.
func readLines(r io.Reader, limits config.Limits, obs Observer) ([]string, error) {
	var lines []string
	scanner := newScanner(r, limits)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if obs != nil {
			obs(len(lines))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, scanError(err, limits)
	}
	return lines, nil
}

// newScanner builds a line scanner whose buffer is capped just above the
// per-line limit, so an over-long line surfaces as bufio.ErrTooLong.
func newScanner(r io.Reader, limits config.Limits) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), limits.MaxLineBytes+1)
	return scanner
}

// scanError maps scanner failures onto the run's error taxonomy.
func scanError(err error, limits config.Limits) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return &LimitError{Limit: LimitLine, Max: limits.MaxLineBytes}
	}
	return fmt.Errorf("read input: %w", err)
}
