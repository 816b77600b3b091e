package value

import "fmt"

// Class is the runtime value produced by a CLASS instruction and populated
// by DEFFIELD/DEFMETHOD/DEFCONSTRUCTOR/INHERIT. It holds its own members
// plus an optional Parent for associated/instance lookup fallthrough (the
// chain INHERIT establishes at compile time).
type Class struct {
	ClassName     string
	Parent        *Class
	Fields        []string            // declared instance field names, in declaration order
	FieldDefaults map[string]Value    // each field's DEFFIELD initializer result
	Methods       map[string]*Closure // instance methods, including inherited traits' defaults
	Constructors  map[string]*Closure // named constructors
	Associated    map[string]Value    // values defined directly on the class, reachable via GETASSOC
}

var (
	_ Value    = (*Class)(nil)
	_ Callable = (*Class)(nil)
	_ HasAttrs = (*Class)(nil)
)

func NewClass(name string) *Class {
	return &Class{
		ClassName:     name,
		FieldDefaults: make(map[string]Value),
		Methods:       make(map[string]*Closure),
		Constructors:  make(map[string]*Closure),
		Associated:    make(map[string]Value),
	}
}

func (c *Class) String() string { return fmt.Sprintf("class(%s)", c.ClassName) }
func (c *Class) Type() string   { return "class" }
func (c *Class) Name() string   { return c.ClassName }

// Method looks up an instance method by name, following the parent chain.
func (c *Class) Method(name string) (*Closure, bool) {
	for cl := c; cl != nil; cl = cl.Parent {
		if m, ok := cl.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Constructor looks up a named constructor on this class only; constructors
// are not inherited.
func (c *Class) Constructor(name string) (*Closure, bool) {
	m, ok := c.Constructors[name]
	return m, ok
}

// Assoc resolves a `Class:name` expression: an associated value, else an
// unbound method, else a constructor wrapped so it can be called directly
// as Class:name(...) without going through the default-constructor
// selection CALL otherwise applies to a bare Class(...) call.
func (c *Class) Assoc(name string) (Value, error) {
	if v, ok := c.Associated[name]; ok {
		return v, nil
	}
	if m, ok := c.Method(name); ok {
		return &UnboundMethod{Class: c, Method: m}, nil
	}
	if body, ok := c.Constructor(name); ok {
		return &Constructor{Class: c, CtorName: name, Body: body}, nil
	}
	return nil, nil
}

// Attr implements HasAttrs so a `.` dot expression on a Class value also
// resolves associated values (GETASSOC is the primary route; GETPROP
// falls back to the same resolution for convenience).
func (c *Class) Attr(name string) (Value, error) {
	return c.Assoc(name)
}

func (c *Class) AttrNames() []string {
	names := make([]string, 0, len(c.Associated)+len(c.Methods))
	for n := range c.Associated {
		names = append(names, n)
	}
	for n := range c.Methods {
		names = append(names, n)
	}
	return names
}

// Constructor is the callable value produced when a Class's named
// constructor is invoked as Class(...) or Class.new(...). It carries the
// class so the vm can allocate the Instance into local slot 0 before
// running the constructor body, per the call protocol that assigns that
// responsibility to the vm rather than to compiled bytecode.
type Constructor struct {
	Class    *Class
	CtorName string
	Body     *Closure
}

var (
	_ Value    = (*Constructor)(nil)
	_ Callable = (*Constructor)(nil)
)

func (c *Constructor) String() string {
	return fmt.Sprintf("constructor(%s.%s)", c.Class.ClassName, c.CtorName)
}
func (c *Constructor) Type() string { return "constructor" }

// Name satisfies Callable. It returns the constructor's declared name
// (e.g. "new"), not the class name, since a class may define more than one
// named constructor.
func (c *Constructor) Name() string { return c.CtorName }

// Instance is a runtime object created by invoking a Constructor. Fields
// are stored in a map keyed by field name, read and written by
// GETPROP/SETPROP.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

var (
	_ Value       = (*Instance)(nil)
	_ HasAttrs    = (*Instance)(nil)
	_ HasSetField = (*Instance)(nil)
)

func NewInstance(class *Class) *Instance {
	fields := make(map[string]Value, len(class.Fields))
	for _, f := range class.Fields {
		if d, ok := class.FieldDefaults[f]; ok {
			fields[f] = d
		} else {
			fields[f] = NilValue
		}
	}
	return &Instance{Class: class, Fields: fields}
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.ClassName) }
func (i *Instance) Type() string   { return i.Class.ClassName }

// Attr resolves a field first, then a bound instance method.
func (i *Instance) Attr(name string) (Value, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if m, ok := i.Class.Method(name); ok {
		return &InstanceMethod{Receiver: i, Method: m}, nil
	}
	return nil, nil
}

func (i *Instance) AttrNames() []string {
	names := make([]string, 0, len(i.Fields))
	for n := range i.Fields {
		names = append(names, n)
	}
	return names
}

func (i *Instance) SetField(name string, v Value) error {
	if _, ok := i.Fields[name]; !ok {
		return NoSuchAttrError(fmt.Sprintf("%s has no field %q", i.Class.ClassName, name))
	}
	i.Fields[name] = v
	return nil
}

// InstanceMethod is the bound-method value produced by `instance.method`: a
// Closure paired with the receiving Instance, so the vm can supply self as
// local slot 0 without the caller passing it explicitly.
type InstanceMethod struct {
	Receiver *Instance
	Method   *Closure
}

var (
	_ Value    = (*InstanceMethod)(nil)
	_ Callable = (*InstanceMethod)(nil)
)

func (m *InstanceMethod) String() string {
	return fmt.Sprintf("method(%s.%s)", m.Receiver.Class.ClassName, m.Method.Name())
}
func (m *InstanceMethod) Type() string { return "method" }
func (m *InstanceMethod) Name() string { return m.Method.Name() }

// UnboundMethod is the value produced by `Class:name` when name resolves to
// an instance method rather than an associated value: the method's closure
// with no receiver bound. lang/vm runs it with self set to NilValue, the
// same call framing an InstanceMethod gets, so a method referencing self
// only through fields/other methods fails predictably rather than silently
// misreading its own parameters (self still owns local slot 0).
type UnboundMethod struct {
	Class  *Class
	Method *Closure
}

var (
	_ Value    = (*UnboundMethod)(nil)
	_ Callable = (*UnboundMethod)(nil)
)

func (m *UnboundMethod) String() string {
	return fmt.Sprintf("method(%s.%s)", m.Class.ClassName, m.Method.Name())
}
func (m *UnboundMethod) Type() string { return "method" }
func (m *UnboundMethod) Name() string { return m.Method.Name() }
