package corelib_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaon-lang/kaon/lang/compiler"
	"github.com/kaon-lang/kaon/lang/corelib"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/resolver"
	"github.com/kaon-lang/kaon/lang/token"
	"github.com/kaon-lang/kaon/lang/vm"
)

// run compiles and executes src against a VM with the default core library
// installed, returning everything printed to stdout.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	chunk, err := parser.Parse(token.NewSource("test", src))
	require.NoError(t, err, "parse")
	require.NoError(t, resolver.Resolve(chunk, corelib.IsGlobal), "resolve")
	fn, err := compiler.Compile(chunk)
	require.NoError(t, err, "compile")

	m := vm.New()
	var out bytes.Buffer
	m.Stdout = &out
	corelib.Register(m)

	_, err = m.Interpret(fn)
	return out.String(), err
}

func TestPrintJoinsArgsWithSpaces(t *testing.T) {
	out, err := run(t, `print(1, "two", true)`)
	require.NoError(t, err)
	require.Equal(t, "1 two true\n", out)
}

func TestLenOverStringListAndMap(t *testing.T) {
	out, err := run(t, `
		print(len("hello"))
		print(len([1, 2, 3]))
		print(len({"a": 1, "b": 2}))
	`)
	require.NoError(t, err)
	require.Equal(t, "5\n3\n2\n", out)
}

func TestTypeAndStrAndNum(t *testing.T) {
	out, err := run(t, `
		print(type(1))
		print(type("s"))
		print(type([1]))
		print(str(42))
		print(num("3.5") + 1)
	`)
	require.NoError(t, err)
	require.Equal(t, "number\nstring\nlist\n42\n4.5\n", out)
}

func TestRangeVariants(t *testing.T) {
	out, err := run(t, `
		print(range(3))
		print(range(1, 4))
		print(range(0, 10, 2))
	`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, []string{"[0, 1, 2]", "[1, 2, 3]", "[0, 2, 4, 6, 8]"}, lines)
}

func TestAppendMutatesInPlace(t *testing.T) {
	out, err := run(t, `
		var xs = [1, 2]
		append(xs, 3)
		print(xs)
	`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n", out)
}

func TestKeysPreservesInsertionOrder(t *testing.T) {
	out, err := run(t, `
		var m = {"z": 1, "a": 2, "m": 3}
		print(keys(m))
	`)
	require.NoError(t, err)
	require.Equal(t, "[z, a, m]\n", out)
}

func TestFirstLastRestOnEmptyList(t *testing.T) {
	out, err := run(t, `
		print(first([]))
		print(last([]))
		print(rest([]))
	`)
	require.NoError(t, err)
	require.Equal(t, "nil\nnil\n[]\n", out)
}

func TestSortedNumbersAndStrings(t *testing.T) {
	out, err := run(t, `
		print(sorted([3, 1, 2]))
		print(sorted(["b", "a", "c"]))
	`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n[a, b, c]\n", out)
}

func TestSortedRejectsMixedTypes(t *testing.T) {
	_, err := run(t, `print(sorted([1, "a"]))`)
	require.Error(t, err, "want an error for mixed-type sort")
}
