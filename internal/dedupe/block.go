package dedupe

import (
	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/parser"
)

// Block is one logical diagnostic report: an ordered, non-empty run of
// lines delimited by block-start lines. A block owns its lines exclusively
// until it is emitted or discarded.
type Block struct {
	lines []string
	size  int
	cat   parser.Category
}

// Lines returns the block's lines in input order.
func (b *Block) Lines() []string { return b.lines }

// Category returns the first diagnostic category classified while the block
// accumulated, or CategoryOther if none matched.
func (b *Block) Category() parser.Category { return b.cat }

// Text returns the block's raw text exactly as read, one line per input
// line with a trailing newline.
func (b *Block) Text() string {
	n := 0
	for _, l := range b.lines {
		n += len(l) + 1
	}
	buf := make([]byte, 0, n)
	for _, l := range b.lines {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	return string(buf)
}

// append adds a line to the block, enforcing the per-line and per-block
// limits. Size accounting includes the newline each line carried on input.
func (b *Block) append(line string, limits config.Limits) error {
	if len(line) > limits.MaxLineBytes {
		return &LimitError{Limit: LimitLine, Max: limits.MaxLineBytes}
	}
	b.size += len(line) + 1
	if b.size > limits.MaxBlockBytes {
		return &LimitError{Limit: LimitBlock, Max: limits.MaxBlockBytes}
	}
	b.lines = append(b.lines, line)
	if b.cat == parser.CategoryOther {
		b.cat = parser.Classify(line)
	}
	return nil
}
