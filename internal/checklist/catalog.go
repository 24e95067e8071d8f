package checklist

import "fmt"

// DefaultCommentItem is the "unneeded items" check; it carries a free-text
// comment per section.
const DefaultCommentItem = "不要物"

// DefaultMachineCount is the number of machines on the floor.
const DefaultMachineCount = 10

type Section struct {
	Name  string
	Items []string
}

// Catalog is the fixed space of machines, sections and items. It must not be
// mutated after the server starts.
type Catalog struct {
	Machines    []string
	Sections    []Section
	CommentItem string
}

// MachineNames returns "1号機".."n号機"; n <= 0 yields none.
func MachineNames(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("%d号機", i))
	}
	return out
}

func DefaultSections() []Section {
	return []Section{
		{Name: "作業台", Items: []string{"シャーペン", "消しゴム", DefaultCommentItem}},
		{Name: "成形機", Items: []string{"真鍮棒", "EJロッド", "フライパン", DefaultCommentItem}},
	}
}

func DefaultCatalog() Catalog {
	return Catalog{
		Machines:    MachineNames(DefaultMachineCount),
		Sections:    DefaultSections(),
		CommentItem: DefaultCommentItem,
	}
}

func (c Catalog) Validate() error {
	if len(c.Machines) == 0 || len(c.Sections) == 0 {
		return ErrEmptyCatalog
	}
	if err := unique("machine", c.Machines); err != nil {
		return err
	}
	names := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		if len(s.Items) == 0 {
			return fmt.Errorf("%w: section %q has no items", ErrEmptyCatalog, s.Name)
		}
		if err := unique("item in "+s.Name, s.Items); err != nil {
			return err
		}
		names = append(names, s.Name)
	}
	return unique("section", names)
}

func unique(what string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: %s %q", ErrDuplicateName, what, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// IsCommentItem reports whether item carries the section comment.
func (c Catalog) IsCommentItem(item string) bool {
	return c.CommentItem != "" && item == c.CommentItem
}

// Key resolves a positional reference against the catalog.
func (c Catalog) Key(r Ref) (Key, error) {
	if r.Section >= len(c.Sections) || r.Machine >= len(c.Machines) {
		return Key{}, fmt.Errorf("%w: %s", ErrOutOfRange, r)
	}
	sec := c.Sections[r.Section]
	if r.Item >= len(sec.Items) {
		return Key{}, fmt.Errorf("%w: %s", ErrOutOfRange, r)
	}
	return Key{Section: sec.Name, Item: sec.Items[r.Item], Machine: c.Machines[r.Machine]}, nil
}

// Keys lists every cell in declaration order: section, item, machine.
func (c Catalog) Keys() []Key {
	var keys []Key
	for _, s := range c.Sections {
		for _, item := range s.Items {
			for _, m := range c.Machines {
				keys = append(keys, Key{Section: s.Name, Item: item, Machine: m})
			}
		}
	}
	return keys
}
