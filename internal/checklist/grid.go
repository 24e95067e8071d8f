package checklist

import "strconv"

// CellView is one tappable cell of the rendered grid.
type CellView struct {
	Ref     string
	Machine string
	State   State
	Glyph   string
}

type RowView struct {
	Item        string
	CommentItem bool
	Cells       []CellView
}

type SectionView struct {
	Index        int
	Name         string
	Rows         []RowView
	CommentField string
	CommentItem  string
	Comment      string
	HasComment   bool
}

// MachineView is a header column or, in the tab layout, one tab.
type MachineView struct {
	Index    int
	Name     string
	Active   bool
	Sections []SectionView
}

// Grid is the view model handed to the page template.
type Grid struct {
	Layout   Layout
	Machines []MachineView
	Sections []SectionView
	Active   int
	HasBulk  bool
}

// CommentField is the form field name carrying a section's comment.
func CommentField(section int) string {
	return "comment_" + strconv.Itoa(section)
}

// BuildGrid walks sections, items and machines in declaration order and
// reads the current state of every cell. For LayoutMachineTabs only the
// active machine's cells are materialized.
func BuildGrid(cat Catalog, layout Layout, cells *Cells, comments *Comments, active int) Grid {
	if active < 0 || active >= len(cat.Machines) {
		active = 0
	}
	g := Grid{Layout: layout, Active: active, HasBulk: layout.HasBulk()}

	for mi, m := range cat.Machines {
		g.Machines = append(g.Machines, MachineView{Index: mi, Name: m, Active: mi == active})
	}

	machineIdx := make([]int, 0, len(cat.Machines))
	if layout == LayoutMachineTabs && len(cat.Machines) > 0 {
		machineIdx = append(machineIdx, active)
	} else {
		for mi := range cat.Machines {
			machineIdx = append(machineIdx, mi)
		}
	}

	for si, sec := range cat.Sections {
		sv := SectionView{
			Index:        si,
			Name:         sec.Name,
			CommentField: CommentField(si),
			CommentItem:  cat.CommentItem,
			Comment:      comments.Get(sec.Name),
		}
		for ii, item := range sec.Items {
			row := RowView{Item: item, CommentItem: cat.IsCommentItem(item)}
			if row.CommentItem {
				sv.HasComment = true
			}
			for _, mi := range machineIdx {
				k := Key{Section: sec.Name, Item: item, Machine: cat.Machines[mi]}
				st := cells.Get(k)
				row.Cells = append(row.Cells, CellView{
					Ref:     Ref{Section: si, Item: ii, Machine: mi}.String(),
					Machine: k.Machine,
					State:   st,
					Glyph:   st.Glyph(),
				})
			}
			sv.Rows = append(sv.Rows, row)
		}
		g.Sections = append(g.Sections, sv)
	}

	if layout == LayoutMachineTabs && len(g.Machines) > 0 {
		g.Machines[active].Sections = g.Sections
	}
	return g
}
