// Package gbxml reads, walks and rewrites gbXML documents without losing
// prefixes, attributes, comments or processing instructions.
package gbxml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one item of a parsed document: an element, char data, a comment,
// a processing instruction or a directive. Exactly one kind is set.
type Node struct {
	// Element fields. Name keeps the raw prefix, e.g. "gbxml:Campus".
	Name     string
	Attrs    []xml.Attr
	Children []*Node

	CharData  []byte
	Comment   []byte
	ProcInst  *xml.ProcInst
	Directive []byte
}

// IsElement reports whether n is an element node
func (n *Node) IsElement() bool { return n.Name != "" }

// LocalName returns the element name without its prefix
func (n *Node) LocalName() string {
	if i := strings.IndexByte(n.Name, ':'); i >= 0 {
		return n.Name[i+1:]
	}
	return n.Name
}

// Text returns the concatenated char data of the direct children
func (n *Node) Text() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.CharData != nil {
			b.Write(c.CharData)
		}
	}
	return b.String()
}

// SetText replaces all children with a single char data node
func (n *Node) SetText(s string) {
	n.Children = []*Node{{CharData: []byte(s)}}
}

// Elements returns the element children whose local name is name
func (n *Node) Elements(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() && c.LocalName() == name {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed XML file
type Document struct {
	// Prolog holds everything before the root element
	Prolog []*Node
	Root   *Node
	// Epilog holds everything after the root element
	Epilog []*Node
	// BOM is set when the file started with a UTF-8 byte order mark
	BOM bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var ErrNoRoot = errors.New("xml document has no root element")

// Parse reads a whole document. Namespaces are not resolved so the output
// keeps the original prefixes and xmlns declarations.
func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	doc := &Document{}
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		doc.BOM = true
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
	}
	dec := xml.NewDecoder(br)
	var stack []*Node

	appendNode := func(n *Node) {
		switch {
		case len(stack) > 0:
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
		case doc.Root == nil:
			doc.Prolog = append(doc.Prolog, n)
		default:
			doc.Epilog = append(doc.Epilog, n)
		}
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: rawName(t.Name), Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				doc.Root = n
			} else {
				appendNode(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != rawName(t.Name) {
				return nil, fmt.Errorf("parse xml: unexpected end element %s", rawName(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			appendNode(&Node{CharData: append([]byte(nil), t...)})
		case xml.Comment:
			appendNode(&Node{Comment: append([]byte(nil), t...)})
		case xml.ProcInst:
			pi := t.Copy()
			appendNode(&Node{ProcInst: &pi})
		case xml.Directive:
			appendNode(&Node{Directive: append([]byte(nil), t...)})
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("parse xml: unclosed element %s", stack[len(stack)-1].Name)
	}
	if doc.Root == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// Encode writes the document back out
func (d *Document) Encode(w io.Writer) error {
	if d.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	enc := xml.NewEncoder(w)
	for i, n := range d.Prolog {
		if err := encodeNode(enc, n); err != nil {
			return err
		}
		// keep the declaration on its own line
		if i == 0 && n.ProcInst != nil {
			if err := enc.EncodeToken(xml.CharData("\n")); err != nil {
				return err
			}
		}
	}
	if err := encodeNode(enc, d.Root); err != nil {
		return err
	}
	for _, n := range d.Epilog {
		if err := encodeNode(enc, n); err != nil {
			return err
		}
	}
	return enc.Flush()
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	switch {
	case n.IsElement():
		start := xml.StartElement{Name: xml.Name{Local: n.Name}, Attr: rawAttrs(n.Attrs)}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := encodeNode(enc, c); err != nil {
				return err
			}
		}
		return enc.EncodeToken(xml.EndElement{Name: start.Name})
	case n.CharData != nil:
		return enc.EncodeToken(xml.CharData(n.CharData))
	case n.Comment != nil:
		return enc.EncodeToken(xml.Comment(n.Comment))
	case n.ProcInst != nil:
		return enc.EncodeToken(*n.ProcInst)
	case n.Directive != nil:
		return enc.EncodeToken(xml.Directive(n.Directive))
	}
	return nil
}

// rawName flattens a raw (unresolved) name into "prefix:local"
func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// rawAttrs flattens attribute prefixes so the encoder writes them verbatim
func rawAttrs(attrs []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = xml.Attr{Name: xml.Name{Local: rawName(a.Name)}, Value: a.Value}
	}
	return out
}
