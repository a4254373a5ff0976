package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mockkp/simplekp/pkg/registry"
)

// ValueType represents the type of an attribute value
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// Value represents a typed scalar attribute value
type Value struct {
	Type ValueType
	Data []byte
}

// Helper functions to create typed values
func StringValue(s string) Value {
	return Value{Type: TypeString, Data: []byte(s)}
}

func IntValue(i int64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(i))
	return Value{Type: TypeInt, Data: data}
}

func FloatValue(f float64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(f))
	return Value{Type: TypeFloat, Data: data}
}

func BoolValue(b bool) Value {
	data := []byte{0}
	if b {
		data[0] = 1
	}
	return Value{Type: TypeBool, Data: data}
}

// Decode methods
func (v Value) AsString() (string, error) {
	if v.Type != TypeString {
		return "", fmt.Errorf("value is not a string")
	}
	return string(v.Data), nil
}

func (v Value) AsInt() (int64, error) {
	if v.Type != TypeInt {
		return 0, fmt.Errorf("value is not an int")
	}
	return int64(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsFloat() (float64, error) {
	if v.Type != TypeFloat {
		return 0, fmt.Errorf("value is not a float")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsBool() (bool, error) {
	if v.Type != TypeBool {
		return false, fmt.Errorf("value is not a bool")
	}
	return v.Data[0] == 1, nil
}

// Scalar returns the decoded Go value regardless of type.
func (v Value) Scalar() any {
	switch v.Type {
	case TypeString:
		s, _ := v.AsString()
		return s
	case TypeInt:
		i, _ := v.AsInt()
		return i
	case TypeFloat:
		f, _ := v.AsFloat()
		return f
	case TypeBool:
		b, _ := v.AsBool()
		return b
	default:
		return nil
	}
}

// MarshalJSON encodes the value as its plain scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Scalar())
}

// UnmarshalJSON decodes a plain JSON scalar into a typed value. Numbers
// without a fractional part become ints.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case bool:
		*v = BoolValue(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < math.MaxInt64 {
			*v = IntValue(int64(x))
		} else {
			*v = FloatValue(x)
		}
	default:
		return fmt.Errorf("unsupported attribute value: %s", string(data))
	}
	return nil
}

// Node represents a vertex in the knowledge graph
type Node struct {
	ID         string                   `json:"id"`
	Category   registry.Category        `json:"category"`
	Name       string                   `json:"name"`
	Attributes map[string]Value         `json:"attributes,omitempty"`
}

// Edge represents a directed, predicate-labeled relationship between nodes
type Edge struct {
	ID         string                   `json:"id"`
	Subject    string                   `json:"subject"`
	Object     string                   `json:"object"`
	Predicate  registry.Predicate       `json:"predicate"`
	Attributes map[string]Value         `json:"attributes,omitempty"`
}

// KnowledgeGraph is the full set of generated nodes and edges for one run.
// Slice order is the creation order and is significant for reproducibility.
type KnowledgeGraph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Clone creates a deep copy of a node
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:       n.ID,
		Category: n.Category,
		Name:     n.Name,
	}
	if n.Attributes != nil {
		clone.Attributes = make(map[string]Value, len(n.Attributes))
		for k, v := range n.Attributes {
			clone.Attributes[k] = v
		}
	}
	return clone
}

// Clone creates a deep copy of an edge
func (e *Edge) Clone() *Edge {
	clone := &Edge{
		ID:        e.ID,
		Subject:   e.Subject,
		Object:    e.Object,
		Predicate: e.Predicate,
	}
	if e.Attributes != nil {
		clone.Attributes = make(map[string]Value, len(e.Attributes))
		for k, v := range e.Attributes {
			clone.Attributes[k] = v
		}
	}
	return clone
}

// GetAttribute gets an attribute value
func (n *Node) GetAttribute(key string) (Value, bool) {
	val, ok := n.Attributes[key]
	return val, ok
}

// GetAttribute gets an attribute value
func (e *Edge) GetAttribute(key string) (Value, bool) {
	val, ok := e.Attributes[key]
	return val, ok
}
