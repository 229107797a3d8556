// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "  \n\t\n"},
		{name: "comment only", input: "# nothing here\n"},
		{name: "bare scalar", input: "just a string\n"},
		{name: "sequence", input: "- a\n- b\n"},
		{name: "explicit null", input: "~\n"},
		{name: "empty mapping marker", input: "{}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestDecode_Scalars(t *testing.T) {
	m, err := decode([]byte(strings.Join([]string{
		"str: hello",
		"quoted: \"42\"",
		"int: 42",
		"hex: 0x1F",
		"float: 2.5",
		"exp: 1e3",
		"inf: .inf",
		"yes: true",
		"nothing: null",
		"tilde: ~",
		"date: 2001-12-14",
		"huge: 123456789012345678901234567890",
	}, "\n")))
	require.NoError(t, err)

	assert.Equal(t, []string{"str", "quoted", "int", "hex", "float", "exp", "inf", "yes", "nothing", "tilde", "date", "huge"}, m.Keys())
	assert.Equal(t, KindString, m.Value("str").Kind())
	assert.Equal(t, KindString, m.Value("quoted").Kind())
	assert.Equal(t, IntValue(42), m.Value("int"))
	assert.Equal(t, IntValue(31), m.Value("hex"))
	assert.Equal(t, FloatValue(2.5), m.Value("float"))
	assert.Equal(t, FloatValue(1000), m.Value("exp"))
	assert.True(t, math.IsInf(m.Value("inf").FloatOr(0), 1))
	assert.Equal(t, BoolValue(true), m.Value("yes"))
	assert.True(t, m.Value("nothing").IsNull())
	assert.True(t, m.Has("tilde"))
	assert.Equal(t, StringValue("2001-12-14"), m.Value("date"))
	assert.Equal(t, KindFloat, m.Value("huge").Kind())
}

func TestDecode_NestedAndMerge(t *testing.T) {
	src := `
base: &base
  host: localhost
  port: 3306
primary:
  <<: *base
  port: 5432
list:
  - one
  - nested:
      deep: true
`
	m, err := decode([]byte(src))
	require.NoError(t, err)

	primary, ok := m.Value("primary").AsMap()
	require.True(t, ok)
	assert.Equal(t, "localhost", primary.Value("host").StringOr(""))
	assert.Equal(t, 5432, primary.Value("port").IntOr(0))
	assert.Equal(t, []string{"port", "host"}, primary.Keys())

	list, ok := m.Value("list").AsList()
	require.True(t, ok)
	require.Len(t, list, 2)
	nested, ok := list[1].AsMap()
	require.True(t, ok)
	deep, ok := nested.Value("nested").AsMap()
	require.True(t, ok)
	assert.True(t, deep.Value("deep").BoolOr(false))
}

func TestDecode_AliasExpansionIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("a: &a [x, y]\n")
	b.WriteString("b: [")
	for i := 0; i < maxAliasExpansions+1; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("*a")
	}
	b.WriteString("]\n")

	_, err := decode([]byte(b.String()))
	require.ErrorIs(t, err, errTooManyAliases)
}

func TestDecode_AliasesWithinBudget(t *testing.T) {
	m, err := decode([]byte("a: &a [x, y]\nb: [*a, *a]\n"))
	require.NoError(t, err)

	list, ok := m.Value("b").AsList()
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode([]byte("key: [unterminated\n"))
	require.Error(t, err)
}

func TestEncode_BlockStyle(t *testing.T) {
	m := NewMap().
		Put("name", StringValue("demo")).
		Put("data", MapValue(NewMap().
			Put("host", StringValue("localhost")).
			Put("port", IntValue(3306)))).
		Put("worlds", ListValue(StringValue("overworld"), StringValue("nether")))

	out, err := encode(m)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "name: demo\n")
	assert.Contains(t, text, "data:\n  host: localhost\n  port: 3306\n")
	assert.Contains(t, text, "- overworld\n")
	assert.NotContains(t, text, "{")
	assert.NotContains(t, text, "[")
	assert.Less(t, strings.Index(text, "name:"), strings.Index(text, "data:"))
	assert.Less(t, strings.Index(text, "data:"), strings.Index(text, "worlds:"))
}

func TestEncode_EmptyMapping(t *testing.T) {
	out, err := encode(NewMap())
	require.NoError(t, err)

	m, err := decode(out)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	ambiguous := []string{"true", "no", "42", "3.5", "null", "~", "", "a: b", "# hash", "line1\nline2", "  padded  "}
	m := NewMap()
	for i, s := range ambiguous {
		m.Put(fmt.Sprintf("s%d", i), StringValue(s))
	}
	m.Put("whole-float", FloatValue(1))
	m.Put("neg-float", FloatValue(-0.25))
	m.Put("big-float", FloatValue(1e21))
	m.Put("nan", FloatValue(math.NaN()))
	m.Put("neg-inf", FloatValue(math.Inf(-1)))
	m.Put("int", IntValue(math.MinInt64))
	m.Put("bool", BoolValue(false))
	m.Put("null", NullValue())
	m.Put("empty-list", ListValue())
	m.Put("empty-map", MapValue(NewMap()))
	m.Put("mixed", ListValue(IntValue(1), StringValue("two"), ListValue(BoolValue(true))))

	out, err := encode(m)
	require.NoError(t, err)

	back, err := decode(out)
	require.NoError(t, err)
	assert.True(t, m.Equal(back), "round trip mismatch:\n%s", out)
	assert.Equal(t, m.Keys(), back.Keys())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1, want: "1.0"},
		{in: -3, want: "-3.0"},
		{in: 0.5, want: "0.5"},
		{in: 1e21, want: "1e+21"},
		{in: math.Inf(1), want: ".inf"},
		{in: math.NaN(), want: ".nan"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.in))
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{name: "blank", in: "  ", want: NullValue()},
		{name: "int", in: "42", want: IntValue(42)},
		{name: "hex", in: "0x10", want: IntValue(16)},
		{name: "float", in: "2.5", want: FloatValue(2.5)},
		{name: "bool", in: "false", want: BoolValue(false)},
		{name: "quoted", in: `"42"`, want: StringValue("42")},
		{name: "word", in: "Welcome", want: StringValue("Welcome")},
		{name: "flow list", in: "[a, 1]", want: ListValue(StringValue("a"), IntValue(1))},
		{
			name: "flow map",
			in:   "{host: db, port: 5432}",
			want: MapValue(NewMap().Put("host", StringValue("db")).Put("port", IntValue(5432))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %#v, got %#v", tt.want, got)
		})
	}

	_, err := ParseValue("[oops")
	require.Error(t, err)
}

func TestParseAndMarshal(t *testing.T) {
	m, err := Parse([]byte("b: 1\na: [x]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	out, err := Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "b: 1\na:\n  - x\n", string(out))
}
