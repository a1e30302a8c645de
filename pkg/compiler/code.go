package compiler

import (
	"strconv"
	"strings"
)

// tab is the indentation prefix for instruction lines.
const tab = "    "

// codeLine is one output line. A plain line carries only text. A deferred
// line references a stack slot whose address depends on the enclosing
// function's final stack depth; it renders as prefix + address + suffix.
type codeLine struct {
	text   string
	slot   *Variable
	suffix string
}

// Code is an ordered sequence of assembly lines. Stack-slot references are
// kept as data until Render, because a function's stack depth keeps growing
// while its body is being walked; by the time the whole program is
// serialized every depth has settled.
type Code struct {
	lines []codeLine
}

func newCode() *Code { return &Code{} }

// add appends one literal line (without trailing newline).
func (c *Code) add(line string) {
	c.lines = append(c.lines, codeLine{text: line})
}

// addSlot appends a deferred line: prefix, the slot's stack address, suffix.
func (c *Code) addSlot(prefix string, slot *Variable, suffix string) {
	c.lines = append(c.lines, codeLine{text: prefix, slot: slot, suffix: suffix})
}

// append concatenates other onto c and returns c.
func (c *Code) append(other *Code) *Code {
	if other != nil {
		c.lines = append(c.lines, other.lines...)
	}
	return c
}

// Render serializes the code, resolving every deferred stack reference.
func (c *Code) Render() string {
	var sb strings.Builder
	for _, l := range c.lines {
		sb.WriteString(l.text)
		if l.slot != nil {
			sb.WriteString(strconv.Itoa(l.slot.StackAddress()))
			sb.WriteString(l.suffix)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
