package history

import (
	"fmt"
	"slices"

	"shift-checklist/internal/checklist"
)

// Shape selects how a grid snapshot is flattened into rows.
type Shape string

const (
	// ShapeWide writes one row per (section, item) with a column per machine.
	ShapeWide Shape = "wide"
	// ShapeLong writes one row per (section, item, machine).
	ShapeLong Shape = "long"
)

func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeWide, ShapeLong:
		return Shape(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

var reservedColumns = []string{ColTimestamp, ColOperator, ColSection, ColItem, ColMachine, ColState, ColComment}

// CheckCatalog rejects machine names that would overwrite a fixed column
// of the wide shape.
func CheckCatalog(cat checklist.Catalog) error {
	for _, m := range cat.Machines {
		if slices.Contains(reservedColumns, m) {
			return fmt.Errorf("%w: %q", ErrReservedColumn, m)
		}
	}
	return nil
}

// Flatten turns a snapshot into records plus the column order they use.
// The operator column appears only when the snapshot carries an ID.
func Flatten(snap checklist.Snapshot, shape Shape, timestamp string) ([]string, []map[string]string) {
	cols := []string{ColTimestamp}
	if snap.OperatorID != "" {
		cols = append(cols, ColOperator)
	}
	cols = append(cols, ColSection, ColItem)

	cat := snap.Catalog
	var records []map[string]string
	base := func(section, item string) map[string]string {
		rec := map[string]string{
			ColTimestamp: timestamp,
			ColSection:   section,
			ColItem:      item,
		}
		if snap.OperatorID != "" {
			rec[ColOperator] = snap.OperatorID
		}
		return rec
	}

	switch shape {
	case ShapeLong:
		cols = append(cols, ColMachine, ColState, ColComment)
		for _, sec := range cat.Sections {
			comment := snap.Comments[sec.Name]
			for _, item := range sec.Items {
				for _, m := range cat.Machines {
					rec := base(sec.Name, item)
					rec[ColMachine] = m
					rec[ColState] = string(snap.State(checklist.Key{Section: sec.Name, Item: item, Machine: m}))
					rec[ColComment] = comment
					records = append(records, rec)
				}
			}
		}
	default:
		cols = append(cols, cat.Machines...)
		cols = append(cols, ColComment)
		for _, sec := range cat.Sections {
			for _, item := range sec.Items {
				rec := base(sec.Name, item)
				for _, m := range cat.Machines {
					rec[m] = string(snap.State(checklist.Key{Section: sec.Name, Item: item, Machine: m}))
				}
				if cat.IsCommentItem(item) {
					rec[ColComment] = snap.Comments[sec.Name]
				}
				records = append(records, rec)
			}
		}
	}
	return cols, records
}
