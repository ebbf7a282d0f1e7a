package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// Document is a loaded element tree plus the style sources its markup referenced.
type Document struct {
	root *Node

	// Styles holds the text of embedded <style> blocks in document order.
	Styles []string
	// StyleLinks holds hrefs of linked style sheets in document order.
	StyleLinks []string

	htmlRoot *html.Node
	fromHTML map[*html.Node]*Node
	xmlRoot  *etree.Element
	fromXML  map[*etree.Element]*Node
}

// NewDocument wraps an existing tree.
func NewDocument(root *Node) *Document {
	return &Document{root: root}
}

// Root returns the layout root.
func (d *Document) Root() *Node { return d.root }

// ElementByID finds the first element with the given id.
func (d *Document) ElementByID(id string) *Node {
	var found *Node
	d.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.IsElement() && n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// ParseHTML builds a document from HTML markup. The root is the <html> element.
func ParseHTML(r io.Reader) (*Document, error) {
	top, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := &Document{htmlRoot: top, fromHTML: make(map[*html.Node]*Node)}

	var rootHTML *html.Node
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			rootHTML = c
			break
		}
	}
	if rootHTML == nil {
		return nil, fmt.Errorf("parse html: document has no root element")
	}
	doc.root = doc.convertHTML(rootHTML)
	return doc, nil
}

func (d *Document) convertHTML(hn *html.Node) *Node {
	n := NewElement(hn.Data)
	for _, a := range hn.Attr {
		n.SetAttr(a.Key, a.Val)
	}
	d.fromHTML[hn] = n

	switch n.tag {
	case "style":
		d.Styles = append(d.Styles, htmlquery.InnerText(hn))
	case "link":
		if rel := strings.ToLower(htmlquery.SelectAttr(hn, "rel")); rel == "stylesheet" {
			d.StyleLinks = append(d.StyleLinks, htmlquery.SelectAttr(hn, "href"))
		}
	}

	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.AppendChild(d.convertHTML(c))
		case html.TextNode:
			if n.tag == "style" || n.tag == "script" {
				continue
			}
			t := NewText(c.Data)
			d.fromHTML[c] = t
			n.AppendChild(t)
		}
	}
	return n
}

// ParseRML builds a document from RML, the XML dialect used by game UIs. The root
// is the <body> element when one exists, otherwise the document element.
func ParseRML(r io.Reader) (*Document, error) {
	xd := etree.NewDocument()
	xd.ReadSettings.Permissive = true
	if _, err := xd.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse rml: %w", err)
	}
	top := xd.Root()
	if top == nil {
		return nil, fmt.Errorf("parse rml: document has no root element")
	}

	doc := &Document{xmlRoot: top, fromXML: make(map[*etree.Element]*Node)}
	if head := top.SelectElement("head"); head != nil {
		for _, el := range head.ChildElements() {
			switch strings.ToLower(el.Tag) {
			case "style":
				doc.Styles = append(doc.Styles, el.Text())
			case "link":
				if t := el.SelectAttrValue("type", ""); t == "" || strings.Contains(t, "css") {
					doc.StyleLinks = append(doc.StyleLinks, el.SelectAttrValue("href", ""))
				}
			}
		}
	}

	rootEl := top
	if body := top.SelectElement("body"); body != nil {
		rootEl = body
	}
	doc.root = doc.convertXML(rootEl)
	return doc, nil
}

func (d *Document) convertXML(el *etree.Element) *Node {
	n := NewElement(el.Tag)
	for _, a := range el.Attr {
		n.SetAttr(a.Key, a.Value)
	}
	d.fromXML[el] = n
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.AppendChild(d.convertXML(t))
		case *etree.CharData:
			n.AppendChild(NewText(t.Data))
		}
	}
	return n
}

// QueryXPath selects elements with an XPath expression. HTML documents support
// full XPath through htmlquery; RML documents support etree's path subset.
func (d *Document) QueryXPath(expr string) ([]*Node, error) {
	switch {
	case d.htmlRoot != nil:
		found, err := htmlquery.QueryAll(d.htmlRoot, expr)
		if err != nil {
			return nil, fmt.Errorf("xpath %q: %w", expr, err)
		}
		var out []*Node
		for _, hn := range found {
			if n, ok := d.fromHTML[hn]; ok {
				out = append(out, n)
			}
		}
		return out, nil

	case d.xmlRoot != nil:
		path, err := etree.CompilePath(expr)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", expr, err)
		}
		var out []*Node
		for _, el := range d.xmlRoot.FindElementsPath(path) {
			if n, ok := d.fromXML[el]; ok {
				out = append(out, n)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("xpath %q: document was not loaded from markup", expr)
}
