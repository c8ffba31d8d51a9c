// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package engine

// NodeKind tags the active member of a Node.
type NodeKind int

const (
	KindNone NodeKind = iota
	KindFlag
	KindDouble
	KindInt64
	KindString
	KindArray
	KindMap
)

// Node is the engine's self-describing value, decoded once at the event
// boundary into an owned union. Exactly the member selected by Kind is valid.
type Node struct {
	Kind   NodeKind
	Flag   bool
	Double float64
	Int64  int64
	Str    string
	Array  []Node
	Map    map[string]Node
}

func FlagNode(v bool) Node       { return Node{Kind: KindFlag, Flag: v} }
func DoubleNode(v float64) Node  { return Node{Kind: KindDouble, Double: v} }
func Int64Node(v int64) Node     { return Node{Kind: KindInt64, Int64: v} }
func StringNode(v string) Node   { return Node{Kind: KindString, Str: v} }
func ArrayNode(vs ...Node) Node  { return Node{Kind: KindArray, Array: vs} }
func MapNode(m map[string]Node) Node { return Node{Kind: KindMap, Map: m} }

// The As* accessors tag-check before extraction. Updates built from a payload
// whose tag does not match are dropped, so callers branch on ok instead of
// trusting the wire format.

func (n Node) AsFlag() (bool, bool) {
	return n.Flag, n.Kind == KindFlag
}

func (n Node) AsDouble() (float64, bool) {
	switch n.Kind {
	case KindDouble:
		return n.Double, true
	case KindInt64:
		return float64(n.Int64), true
	}
	return 0, false
}

func (n Node) AsInt64() (int64, bool) {
	switch n.Kind {
	case KindInt64:
		return n.Int64, true
	case KindDouble:
		return int64(n.Double), true
	}
	return 0, false
}

func (n Node) AsString() (string, bool) {
	return n.Str, n.Kind == KindString
}

func (n Node) AsArray() ([]Node, bool) {
	return n.Array, n.Kind == KindArray
}

func (n Node) AsMap() (map[string]Node, bool) {
	return n.Map, n.Kind == KindMap
}

// MapString extracts a string field from a map node, or "" if absent or
// differently tagged.
func (n Node) MapString(key string) string {
	if m, ok := n.AsMap(); ok {
		if s, ok := m[key].AsString(); ok {
			return s
		}
	}
	return ""
}

// MapInt64 extracts an integer field from a map node, or 0.
func (n Node) MapInt64(key string) int64 {
	if m, ok := n.AsMap(); ok {
		if v, ok := m[key].AsInt64(); ok {
			return v
		}
	}
	return 0
}

// MapDouble extracts a double field from a map node, or 0.
func (n Node) MapDouble(key string) float64 {
	if m, ok := n.AsMap(); ok {
		if v, ok := m[key].AsDouble(); ok {
			return v
		}
	}
	return 0
}

// MapFlag extracts a flag field from a map node, or false.
func (n Node) MapFlag(key string) bool {
	if m, ok := n.AsMap(); ok {
		if v, ok := m[key].AsFlag(); ok {
			return v
		}
	}
	return false
}
