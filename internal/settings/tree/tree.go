// Package tree models a JSON setting value as an ordered tagged tree so the
// settings editor can render one form field per leaf and write edits back
// without reordering keys or changing a leaf's kind.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	dErrors "superadmin/pkg/domain-errors"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Node is one JSON value. Text holds a string value or the literal of a
// number, so numbers round-trip exactly as the backend wrote them.
type Node struct {
	Kind   Kind
	Text   string
	Bool   bool
	Fields []Field
	Items  []Node
}

// Field is an object member. Fields keep document order.
type Field struct {
	Key   string
	Value Node
}

// Parse reads a single JSON document.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := parseValue(dec)
	if err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("unexpected data after JSON value")
	}
	return n, nil
}

func parseValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := Node{Kind: KindObject, Fields: []Field{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Node{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Node{}, fmt.Errorf("object key is not a string")
				}
				val, err := parseValue(dec)
				if err != nil {
					return Node{}, err
				}
				n.Fields = append(n.Fields, Field{Key: key, Value: val})
			}
			_, err := dec.Token()
			return n, err
		case '[':
			n := Node{Kind: KindArray, Items: []Node{}}
			for dec.More() {
				val, err := parseValue(dec)
				if err != nil {
					return Node{}, err
				}
				n.Items = append(n.Items, val)
			}
			_, err := dec.Token()
			return n, err
		}
		return Node{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return Node{Kind: KindString, Text: t}, nil
	case json.Number:
		return Node{Kind: KindNumber, Text: t.String()}, nil
	case bool:
		return Node{Kind: KindBool, Bool: t}, nil
	case nil:
		return Node{Kind: KindNull}, nil
	}
	return Node{}, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON writes the node back in its original key order.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) write(buf *bytes.Buffer) error {
	switch n.Kind {
	case KindString:
		return writeString(buf, n.Text)
	case KindNumber:
		buf.WriteString(n.Text)
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.Bool))
	case KindObject:
		buf.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Pretty is the indented form shown in the raw editor.
func (n Node) Pretty() string {
	raw, err := n.MarshalJSON()
	if err != nil {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return string(raw)
	}
	return out.String()
}

// Leaf is an editable scalar with its address in the tree.
type Leaf struct {
	Path []string
	Node Node
}

// Name is the form field name for the leaf.
func (l Leaf) Name() string {
	return EncodePath(l.Path)
}

// Label is the human-readable path; the root reads as "value".
func (l Leaf) Label() string {
	if len(l.Path) == 0 {
		return "value"
	}
	return strings.Join(l.Path, " / ")
}

// Long reports whether a string leaf should get a textarea.
func (l Leaf) Long() bool {
	return l.Node.Kind == KindString && len(l.Node.Text) > 50
}

// Leaves lists every scalar in document order. Empty objects and arrays
// have nothing to edit and are skipped.
func (n Node) Leaves() []Leaf {
	var out []Leaf
	n.collect(nil, &out)
	return out
}

func (n Node) collect(path []string, out *[]Leaf) {
	switch n.Kind {
	case KindObject:
		for _, f := range n.Fields {
			f.Value.collect(append(slices.Clone(path), f.Key), out)
		}
	case KindArray:
		for i, item := range n.Items {
			item.collect(append(slices.Clone(path), strconv.Itoa(i)), out)
		}
	default:
		*out = append(*out, Leaf{Path: path, Node: n})
	}
}

// EncodePath turns a path into a form-safe name. The root is "" and every
// segment is escaped and prefixed with "/", so keys may contain any
// character including "/".
func EncodePath(path []string) string {
	var b strings.Builder
	for _, seg := range path {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

func DecodePath(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	if !strings.HasPrefix(encoded, "/") {
		return nil, fmt.Errorf("path %q must start with /", encoded)
	}
	parts := strings.Split(encoded[1:], "/")
	for i, p := range parts {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", encoded, err)
		}
		parts[i] = seg
	}
	return parts, nil
}

// Apply returns a copy of n with each edited leaf replaced. Edits are keyed
// by encoded path and hold the submitted text. A leaf keeps its kind, so a
// number only accepts a number and a boolean only "true" or "false". Nothing
// outside the edited leaves changes.
func (n Node) Apply(edits map[string]string) (Node, error) {
	out := n.clone()
	for _, name := range slices.Sorted(maps.Keys(edits)) {
		path, err := DecodePath(name)
		if err != nil {
			return Node{}, dErrors.Wrap(err, dErrors.CodeValidation, "Invalid field")
		}
		target := out.at(path)
		if target == nil {
			return Node{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("Unknown field %q", Leaf{Path: path}.Label()))
		}
		if err := target.set(edits[name]); err != nil {
			return Node{}, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("%s: %v", Leaf{Path: path}.Label(), err))
		}
	}
	return out, nil
}

func (n *Node) set(text string) error {
	switch n.Kind {
	case KindString:
		n.Text = text
	case KindNumber:
		text = strings.TrimSpace(text)
		if _, err := strconv.ParseFloat(text, 64); err != nil || !json.Valid([]byte(text)) {
			return errors.New("must be a number")
		}
		n.Text = text
	case KindBool:
		switch text {
		case "true":
			n.Bool = true
		case "false":
			n.Bool = false
		default:
			return errors.New("must be true or false")
		}
	case KindNull:
		if text != "" && text != "null" {
			return errors.New("null values are read-only")
		}
	default:
		return fmt.Errorf("cannot set %s directly", n.Kind)
	}
	return nil
}

// at resolves a path to a node inside n. Duplicate object keys resolve to
// the last one, as JSON decoders do.
func (n *Node) at(path []string) *Node {
	cur := n
	for _, seg := range path {
		switch cur.Kind {
		case KindObject:
			var next *Node
			for i := range cur.Fields {
				if cur.Fields[i].Key == seg {
					next = &cur.Fields[i].Value
				}
			}
			if next == nil {
				return nil
			}
			cur = next
		case KindArray:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(cur.Items) {
				return nil
			}
			cur = &cur.Items[i]
		default:
			return nil
		}
	}
	return cur
}

func (n Node) clone() Node {
	out := n
	if n.Fields != nil {
		out.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			out.Fields[i] = Field{Key: f.Key, Value: f.Value.clone()}
		}
	}
	if n.Items != nil {
		out.Items = make([]Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.clone()
		}
	}
	return out
}
