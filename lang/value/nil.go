package value

// Nil is the type of the nil literal. Its only legal value is the Nil
// constant below; represented as a byte rather than struct{} so it remains
// usable as a map key and a constant expression.
type Nil byte

// NilValue is the sole value of type Nil.
const NilValue = Nil(0)

var _ Value = NilValue

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Unit is the type of the unit literal `()`, also the result of a function
// that returns without a value.
type Unit byte

// UnitValue is the sole value of type Unit.
const UnitValue = Unit(0)

var _ Value = UnitValue

func (Unit) String() string { return "()" }
func (Unit) Type() string   { return "unit" }
