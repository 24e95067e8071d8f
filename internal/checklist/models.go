package checklist

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the value of one inspection cell.
type State string

const (
	StateEmpty State = ""
	StateOK    State = "OK"
	StateNG    State = "NG"
)

// Next returns the state a tap moves to: empty -> OK -> NG -> empty.
func (s State) Next() State {
	switch s {
	case StateEmpty:
		return StateOK
	case StateOK:
		return StateNG
	default:
		return StateEmpty
	}
}

// Glyph is the label shown on the cell button.
func (s State) Glyph() string {
	switch s {
	case StateOK:
		return "〇"
	case StateNG:
		return "×"
	default:
		return " "
	}
}

// Layout selects how the grid is arranged on the page.
type Layout string

const (
	LayoutBySection   Layout = "by-section"
	LayoutMachineTabs Layout = "by-machine-tabs"
	LayoutBulkHeader  Layout = "grid-with-bulk-header"
)

var layouts = []Layout{LayoutBySection, LayoutMachineTabs, LayoutBulkHeader}

func ParseLayout(s string) (Layout, error) {
	for _, l := range layouts {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// HasBulk reports whether the layout offers a per-machine "all OK" action.
func (l Layout) HasBulk() bool {
	return l == LayoutMachineTabs || l == LayoutBulkHeader
}

// Key identifies one cell.
type Key struct {
	Section string
	Item    string
	Machine string
}

// Ref addresses a cell by catalog position. It is what travels through
// forms, so a cell key never has to be rebuilt from user-supplied text.
type Ref struct {
	Section int
	Item    int
	Machine int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Section, r.Item, r.Machine)
}

func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Ref{}, fmt.Errorf("%w: %q", ErrBadRef, s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Ref{}, fmt.Errorf("%w: %q", ErrBadRef, s)
		}
		n[i] = v
	}
	return Ref{Section: n[0], Item: n[1], Machine: n[2]}, nil
}

// Snapshot is a point-in-time copy of one session's grid, ready to persist.
type Snapshot struct {
	Catalog    Catalog
	Cells      map[Key]State
	Comments   map[string]string
	OperatorID string
}

// State returns the captured value for k, empty when never touched.
func (s Snapshot) State(k Key) State {
	return s.Cells[k]
}
