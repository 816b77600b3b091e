package value

// Cell is a heap box around a single Value, used for locals captured by a
// closure. GETUPVAL/SETUPVAL always go through a Cell so that the outer
// frame and every nested closure observe the same mutable storage for as
// long as the cell is open; CLOSEUPVAL detaches it from the stack slot it
// shadows without changing its identity.
type Cell struct{ v Value }

var _ Value = (*Cell)(nil)

func NewCell(v Value) *Cell { return &Cell{v: v} }

func (c *Cell) Get() Value  { return c.v }
func (c *Cell) Set(v Value) { c.v = v }

func (c *Cell) String() string { return "cell" }
func (c *Cell) Type() string   { return "cell" }
