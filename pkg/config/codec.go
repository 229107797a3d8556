// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxAliasExpansions caps alias dereferences per document so a hostile file
// cannot blow up memory through nested anchors.
const maxAliasExpansions = 50

// indent is the block indentation written by encode.
const indent = 2

var errTooManyAliases = errors.New("document exceeds alias expansion limit")

// decode parses YAML text into a mapping. Blank input and documents whose
// root is not a mapping decode to an empty mapping.
func decode(data []byte) (*Map, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewMap(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	d := &nodeDecoder{}
	root, err := d.resolve(&doc)
	if err != nil {
		return nil, err
	}
	if root == nil || root.Kind != yaml.MappingNode {
		return NewMap(), nil
	}
	return d.mapping(root)
}

// Parse decodes YAML text with the same rules the store uses for its file.
func Parse(data []byte) (*Map, error) {
	return decode(data)
}

// ParseValue decodes a single YAML value, such as "42", "[a, b]" or
// "{host: db}". Blank text is null.
func ParseValue(text string) (Value, error) {
	if strings.TrimSpace(text) == "" {
		return NullValue(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return Value{}, fmt.Errorf("parse yaml: %w", err)
	}
	d := &nodeDecoder{}
	return d.value(&doc)
}

// Marshal renders m exactly as the store writes it to disk.
func Marshal(m *Map) ([]byte, error) {
	return encode(m)
}

type nodeDecoder struct {
	aliases int
}

// resolve unwraps document and alias nodes, charging each alias against the
// expansion budget.
func (d *nodeDecoder) resolve(n *yaml.Node) (*yaml.Node, error) {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil, nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			d.aliases++
			if d.aliases > maxAliasExpansions {
				return nil, errTooManyAliases
			}
			n = n.Alias
		default:
			return n, nil
		}
	}
	return nil, nil
}

func (d *nodeDecoder) value(n *yaml.Node) (Value, error) {
	n, err := d.resolve(n)
	if err != nil {
		return Value{}, err
	}
	if n == nil {
		return Value{}, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		m, err := d.mapping(n)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	case yaml.SequenceNode:
		list := make([]Value, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := d.value(item)
			if err != nil {
				return Value{}, err
			}
			list = append(list, v)
		}
		return Value{kind: KindList, list: list}, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return Value{}, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
}

func (d *nodeDecoder) mapping(n *yaml.Node) (*Map, error) {
	m := NewMap()
	var merges []*Map

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, err := d.resolve(n.Content[i])
		if err != nil {
			return nil, err
		}
		if keyNode == nil || keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", n.Content[i].Line)
		}

		if keyNode.ShortTag() == "!!merge" {
			merged, err := d.mergeSources(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			merges = append(merges, merged...)
			continue
		}

		v, err := d.value(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		m.Put(keyNode.Value, v)
	}

	// Explicit keys win over merged ones regardless of position.
	for _, src := range merges {
		src.Range(func(k string, v Value) bool {
			if !m.Has(k) {
				m.Put(k, v)
			}
			return true
		})
	}
	return m, nil
}

// mergeSources returns the mappings referenced by a "<<" value: a single
// mapping or a sequence of them.
func (d *nodeDecoder) mergeSources(n *yaml.Node) ([]*Map, error) {
	n, err := d.resolve(n)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		m, err := d.mapping(n)
		if err != nil {
			return nil, err
		}
		return []*Map{m}, nil
	case yaml.SequenceNode:
		var out []*Map
		for _, item := range n.Content {
			sub, err := d.mergeSources(item)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: merge value must be a mapping", n.Line)
}

// scalar maps a resolved YAML scalar onto a Value. Timestamps, binary data
// and custom tags are kept as their source text.
func scalar(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return Value{}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return BoolValue(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return IntValue(i)
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return FloatValue(f)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return FloatValue(f)
		}
	}
	return StringValue(n.Value)
}

// encode renders a mapping as block-style YAML with two-space indentation.
func encode(m *Map) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(mappingNode(m)); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func mappingNode(m *Map) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Range(func(k string, v Value) bool {
		n.Content = append(n.Content, stringNode(k), valueNode(v))
		return true
	})
	return n
}

func valueNode(v Value) *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.i, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v.f)}
	case KindString:
		return stringNode(v.s)
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.list {
			n.Content = append(n.Content, valueNode(item))
		}
		return n
	case KindMap:
		return mappingNode(v.m)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// stringNode tags the scalar as a string; the encoder quotes values such as
// "true" or "42" that would otherwise resolve to another type.
func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// formatFloat writes floats so they resolve back to !!float, never !!int.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
