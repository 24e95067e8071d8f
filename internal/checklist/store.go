package checklist

// Cells is the sparse tri-state grid of one session. It is not safe for
// concurrent use; the owning session serializes access.
type Cells struct {
	states map[Key]State
}

func NewCells() *Cells {
	return &Cells{states: make(map[Key]State)}
}

// Get returns the state of k, empty for cells never touched.
func (c *Cells) Get(k Key) State {
	return c.states[k]
}

// Toggle advances k one step around the cycle and returns the new state.
func (c *Cells) Toggle(k Key) State {
	next := c.states[k].Next()
	c.Set(k, next)
	return next
}

func (c *Cells) Set(k Key, s State) {
	if s == StateEmpty {
		delete(c.states, k)
		return
	}
	c.states[k] = s
}

// SetMachine writes s to every (section, item) cell of one machine.
func (c *Cells) SetMachine(cat Catalog, machine string, s State) {
	for _, sec := range cat.Sections {
		for _, item := range sec.Items {
			c.Set(Key{Section: sec.Name, Item: item, Machine: machine}, s)
		}
	}
}

// Reset returns every cell to unchecked.
func (c *Cells) Reset() {
	c.states = make(map[Key]State)
}

func (c *Cells) Snapshot() map[Key]State {
	out := make(map[Key]State, len(c.states))
	for k, v := range c.states {
		out[k] = v
	}
	return out
}

// Comments holds the free-text note attached to each section.
type Comments struct {
	text map[string]string
}

func NewComments() *Comments {
	return &Comments{text: make(map[string]string)}
}

func (c *Comments) Get(section string) string {
	return c.text[section]
}

func (c *Comments) Set(section, text string) {
	if text == "" {
		delete(c.text, section)
		return
	}
	c.text[section] = text
}

func (c *Comments) Reset() {
	c.text = make(map[string]string)
}

func (c *Comments) Snapshot() map[string]string {
	out := make(map[string]string, len(c.text))
	for k, v := range c.text {
		out[k] = v
	}
	return out
}
