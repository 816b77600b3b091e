// Package corelib is the default global environment installed into a fresh
// lang/vm.VM: the small set of native functions every Kaon program can call
// without an explicit host registration, plus the IsGlobal predicate the
// resolver consults for any identifier that isn't a local or upvalue. It
// depends on lang/vm and lang/value, never the reverse, the same boundary
// the teacher draws between lang/machine and its Universe builtins
// (lang/machine/universe.go): the VM owns the call protocol, corelib only
// supplies values through the already-public RegisterNative/RegisterClass
// bridge. The individual builtins (len/first/rest/last/push-as-append) are
// grounded on the table-of-builtins style the Monkey-derived interpreter in
// the examples pack uses (object/builtins.go), adapted to Kaon's value set
// and native-function signature.
package corelib

import (
	"fmt"
	"sort"

	"github.com/kaon-lang/kaon/lang/value"
	"github.com/kaon-lang/kaon/lang/vm"
)

// Register installs every core builtin as a global on m. print is bound
// separately from the VM-agnostic builtins table below since it is the one
// builtin that writes to m.Stdout rather than being a pure function of its
// arguments.
func Register(m *vm.VM) {
	m.RegisterNative("print", 0, true, func(args []value.Value) (value.Value, error) {
		for i, a := range args {
			if i > 0 {
				fmt.Fprint(m.Stdout, " ")
			}
			fmt.Fprint(m.Stdout, a.String())
		}
		fmt.Fprintln(m.Stdout)
		return value.UnitValue, nil
	})
	for _, b := range builtins {
		m.RegisterNative(b.name, b.arity, b.variadic, b.fn)
	}
}

// IsGlobal reports whether name names a core builtin; it is the
// resolver.IsGlobal implementation cmd/kaon passes to resolver.Resolve.
func IsGlobal(name string) bool {
	if name == "print" {
		return true
	}
	_, ok := byName[name]
	return ok
}

type builtin struct {
	name     string
	arity    int
	variadic bool
	fn       func(args []value.Value) (value.Value, error)
}

var builtins = []builtin{
	{"len", 1, false, biLen},
	{"type", 1, false, biType},
	{"str", 1, false, biStr},
	{"num", 1, false, biNum},
	{"range", 1, true, biRange},
	{"append", 2, false, biAppend},
	{"keys", 1, false, biKeys},
	{"first", 1, false, biFirst},
	{"last", 1, false, biLast},
	{"rest", 1, false, biRest},
	{"sorted", 1, false, biSorted},
}

var byName = func() map[string]builtin {
	m := make(map[string]builtin, len(builtins))
	for _, b := range builtins {
		m[b.name] = b
	}
	return m
}()

func argError(name string, i int, want string, got value.Value) error {
	return fmt.Errorf("%s: argument %d must be %s, got %s", name, i+1, want, got.Type())
}

func biLen(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.String:
		return value.Number(len(v)), nil
	case value.Indexable:
		return value.Number(v.Len()), nil
	case value.Mapping:
		if m, ok := v.(interface{ Len() int }); ok {
			return value.Number(m.Len()), nil
		}
	}
	return nil, argError("len", 0, "a string, list, tuple or map", args[0])
}

func biType(args []value.Value) (value.Value, error) {
	return value.String(args[0].Type()), nil
}

func biStr(args []value.Value) (value.Value, error) {
	return value.String(args[0].String()), nil
}

func biNum(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Number:
		return v, nil
	case value.String:
		var f float64
		if _, err := fmt.Sscanf(string(v), "%g", &f); err != nil {
			return nil, fmt.Errorf("num: %q is not a valid number", string(v))
		}
		return value.Number(f), nil
	case value.Boolean:
		if v {
			return value.Number(1), nil
		}
		return value.Number(0), nil
	}
	return nil, argError("num", 0, "a number, string or boolean", args[0])
}

// biRange builds the list [start, stop) (or [0, stop) with one argument),
// stepping by step (default 1), per spec.md's iteration surface.
func biRange(args []value.Value) (value.Value, error) {
	var start, stop, step float64 = 0, 0, 1
	nums := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(value.Number)
		if !ok {
			return nil, argError("range", i, "a number", a)
		}
		nums[i] = float64(n)
	}
	switch len(nums) {
	case 1:
		stop = nums[0]
	case 2:
		start, stop = nums[0], nums[1]
	case 3:
		start, stop, step = nums[0], nums[1], nums[2]
	default:
		return nil, fmt.Errorf("range: expects 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, fmt.Errorf("range: step must not be zero")
	}
	var out []value.Value
	if step > 0 {
		for x := start; x < stop; x += step {
			out = append(out, value.Number(x))
		}
	} else {
		for x := start; x > stop; x += step {
			out = append(out, value.Number(x))
		}
	}
	return value.NewList(out), nil
}

func biAppend(args []value.Value) (value.Value, error) {
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, argError("append", 0, "a list", args[0])
	}
	l.Append(args[1])
	return l, nil
}

// biKeys walks a Mapping's Iterate() result (each element a (k, v) Tuple)
// and collects the keys into a list, matching Map's insertion-order
// iteration.
func biKeys(args []value.Value) (value.Value, error) {
	it, ok := args[0].(value.Iterable)
	if !ok {
		return nil, argError("keys", 0, "a map", args[0])
	}
	if _, ok := args[0].(value.Mapping); !ok {
		return nil, argError("keys", 0, "a map", args[0])
	}
	iter := it.Iterate()
	defer iter.Done()
	var out []value.Value
	var pair value.Value
	for iter.Next(&pair) {
		t, ok := pair.(*value.Tuple)
		if !ok || t.Len() != 2 {
			continue
		}
		k, err := t.Index(0)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return value.NewList(out), nil
}

func biFirst(args []value.Value) (value.Value, error) {
	v, ok := args[0].(value.Indexable)
	if !ok {
		return nil, argError("first", 0, "a list or tuple", args[0])
	}
	if v.Len() == 0 {
		return value.NilValue, nil
	}
	return v.Index(0)
}

func biLast(args []value.Value) (value.Value, error) {
	v, ok := args[0].(value.Indexable)
	if !ok {
		return nil, argError("last", 0, "a list or tuple", args[0])
	}
	if v.Len() == 0 {
		return value.NilValue, nil
	}
	return v.Index(v.Len() - 1)
}

func biRest(args []value.Value) (value.Value, error) {
	v, ok := args[0].(value.Indexable)
	if !ok {
		return nil, argError("rest", 0, "a list or tuple", args[0])
	}
	if v.Len() == 0 {
		return value.NewList(nil), nil
	}
	out := make([]value.Value, 0, v.Len()-1)
	for i := 1; i < v.Len(); i++ {
		e, err := v.Index(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return value.NewList(out), nil
}

// biSorted orders a list of numbers or a list of strings; mixed element
// types are rejected rather than falling back to an arbitrary ordering.
func biSorted(args []value.Value) (value.Value, error) {
	v, ok := args[0].(value.Indexable)
	if !ok {
		return nil, argError("sorted", 0, "a list or tuple", args[0])
	}
	out := make([]value.Value, v.Len())
	for i := range out {
		e, err := v.Index(i)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		switch a := out[i].(type) {
		case value.Number:
			b, ok := out[j].(value.Number)
			if !ok {
				sortErr = fmt.Errorf("sorted: mixed element types")
				return false
			}
			return a < b
		case value.String:
			b, ok := out[j].(value.String)
			if !ok {
				sortErr = fmt.Errorf("sorted: mixed element types")
				return false
			}
			return a < b
		default:
			sortErr = fmt.Errorf("sorted: elements must be numbers or strings, got %s", a.Type())
			return false
		}
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return value.NewList(out), nil
}
