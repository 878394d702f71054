// Package dedupe implements the log deduplication engine: it groups raw
// lines into diagnostic blocks, resolves which portion of the input is
// current relative to the run marker, and suppresses blocks whose canonical
// signature was already seen within the current epoch.
//
// Batch and streaming modes share this one incremental state machine; they
// differ only in how the epoch boundary is resolved. Batch callers pre-scan
// the buffered input for the last marker occurrence and feed only what
// follows it, so the engine runs marker-blind. Streaming callers feed every
// line and the engine reacts to markers itself, buffering finalized blocks
// until end-of-input proves the last observed marker was final.
package dedupe

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/parser"
)

// Mode selects how the engine resolves epochs.
type Mode int

const (
	// ModeBatch trusts the caller to have trimmed pre-marker content.
	ModeBatch Mode = iota

	// ModeStream reacts to markers and buffers accepted blocks until Flush.
	ModeStream

	// ModeLive reacts to markers but emits accepted blocks immediately.
	// Used by follow mode, where there is no end-of-input to wait for.
	ModeLive
)

// EmitFunc receives each accepted block in first-seen order.
type EmitFunc func(*Block) error

// Engine is the single-owner processing pipeline for one run. It is not
// safe for concurrent use and is constructed fresh per run.
type Engine struct {
	opts    config.Options
	limits  config.Limits
	mode    Mode
	emit    EmitFunc
	cur     *Block
	seen    map[xxh3.Uint128]struct{}
	pending []*Block
	sum     Summary
}

// New creates an engine. emit is called for every accepted block; in
// ModeStream it is only called from Flush.
func New(opts config.Options, limits config.Limits, mode Mode, emit EmitFunc) *Engine {
	return &Engine{
		opts:   opts,
		limits: limits,
		mode:   mode,
		emit:   emit,
		seen:   make(map[xxh3.Uint128]struct{}),
		sum:    Summary{Categories: make(map[string]int)},
	}
}

// markerReactive reports whether the engine itself watches for the marker.
func (e *Engine) markerReactive() bool {
	return e.mode != ModeBatch && !e.opts.KeepAll
}

// buffered reports whether accepted blocks are held until Flush.
func (e *Engine) buffered() bool {
	return e.mode == ModeStream && !e.opts.KeepAll
}

// Feed processes one input line. A returned error is fatal for the run.
func (e *Engine) Feed(line string) error {
	e.sum.Lines++
	if e.markerReactive() && strings.Contains(line, e.opts.Marker) {
		e.reset()
		return nil
	}
	if parser.BlockStart(line) {
		if err := e.finalize(); err != nil {
			return err
		}
		e.cur = &Block{}
	} else if e.cur == nil {
		// Content before the first block-start line forms a block of its own.
		e.cur = &Block{}
	}
	return e.cur.append(line, e.limits)
}

// Flush finalizes any in-progress block and, in buffered mode, emits the
// final epoch's pending blocks in first-seen order.
func (e *Engine) Flush() error {
	if err := e.finalize(); err != nil {
		return err
	}
	for _, b := range e.pending {
		if err := e.emit(b); err != nil {
			return err
		}
	}
	e.pending = nil
	return nil
}

// Summary returns the run counters accumulated so far.
func (e *Engine) Summary() Summary { return e.sum }

// reset starts a fresh epoch: the marker line itself, the in-progress
// block, all pending blocks, the seen-set, and the per-epoch counters are
// discarded. Lines and Epochs keep accumulating, so a streaming run reports
// the same numbers as a batch run over the same input.
func (e *Engine) reset() {
	e.cur = nil
	e.pending = nil
	e.seen = make(map[xxh3.Uint128]struct{})
	e.sum.Blocks = 0
	e.sum.Accepted = 0
	e.sum.Suppressed = 0
	e.sum.Categories = make(map[string]int)
	e.sum.Epochs++
}

// finalize closes the in-progress block, deduplicates it, and routes an
// accepted block to the pending buffer or straight to the emitter.
func (e *Engine) finalize() error {
	if e.cur == nil {
		return nil
	}
	b := e.cur
	e.cur = nil
	e.sum.Blocks++

	sig := e.signature(b)
	if _, dup := e.seen[sig]; dup {
		e.sum.Suppressed++
		return nil
	}
	e.seen[sig] = struct{}{}
	e.sum.Accepted++
	e.sum.Categories[b.cat.String()]++

	if e.buffered() {
		if len(e.pending) >= e.limits.MaxPendingBlocks {
			return &LimitError{Limit: LimitPending, Max: e.limits.MaxPendingBlocks}
		}
		e.pending = append(e.pending, b)
		return nil
	}
	return e.emit(b)
}

// signature hashes the canonical form of the block's first depth lines
// (all lines when depth is 0). Lines are joined with '\n', which cannot
// appear inside a canonicalized line, so the key is unambiguous. A depth
// larger than the block simply uses every line.
func (e *Engine) signature(b *Block) xxh3.Uint128 {
	n := len(b.lines)
	if e.opts.Depth > 0 && e.opts.Depth < n {
		n = e.opts.Depth
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(parser.Canonicalize(b.lines[i], e.opts.Verbose))
	}
	return xxh3.HashString128(sb.String())
}
