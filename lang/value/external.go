package value

import "fmt"

// External wraps an arbitrary Go value so host code can expose it to
// scripts through Vm.RegisterClass without teaching lang/value about the
// host's own types. Data holds the wrapped Go value; Meta is a table of
// name to *NativeFun bound to that data, consulted by GETPROP so
// `external.method()` dispatches into host code exactly like an
// InstanceMethod dispatches into a Closure.
type External struct {
	TypeName string
	Data     any
	Meta     map[string]*NativeFun
}

var (
	_ Value    = (*External)(nil)
	_ HasAttrs = (*External)(nil)
)

func NewExternal(typeName string, data any) *External {
	return &External{TypeName: typeName, Data: data, Meta: make(map[string]*NativeFun)}
}

func (e *External) String() string { return fmt.Sprintf("%s(%p)", e.TypeName, e) }
func (e *External) Type() string   { return e.TypeName }

func (e *External) Attr(name string) (Value, error) {
	if fn, ok := e.Meta[name]; ok {
		return fn, nil
	}
	return nil, nil
}

func (e *External) AttrNames() []string {
	names := make([]string, 0, len(e.Meta))
	for n := range e.Meta {
		names = append(names, n)
	}
	return names
}
