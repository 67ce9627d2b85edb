package project

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/willibrandon/slntools/solution"
)

const indentUnit = "  "

// recordClosers remembers how every self-closing element was written, so
// that untouched elements keep their form and <X></X> stays as it is.
func (d *Document) recordClosers(data []byte) {
	closers := scanClosers(data)
	d.closers = make(map[*etree.Element]string)
	d.emptyCloser = " />"

	i := 0
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, t := range e.Child {
			c, ok := t.(*etree.Element)
			if !ok {
				continue
			}
			if i < len(closers) && closers[i] != "" {
				if len(d.closers) == 0 && closers[i] == "/>" {
					d.emptyCloser = "/>"
				}
				d.closers[c] = closers[i]
			}
			i++
			walk(c)
		}
	}
	walk(&d.doc.Element)
}

// scanClosers returns, for each start tag in document order, the text that
// closes it when it is self-closing ("/>", " />") or "" otherwise.
func scanClosers(data []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var closers []string
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return closers
		}
		if _, ok := tok.(xml.StartElement); !ok {
			continue
		}

		end := int(dec.InputOffset())
		closer := ""
		if end >= 2 && end <= len(data) && string(data[end-2:end]) == "/>" {
			start := end - 2
			for start > 0 && isSpaceByte(data[start-1]) {
				start--
			}
			closer = strings.ReplaceAll(string(data[start:end]), "\r\n", "\n")
		}
		closers = append(closers, closer)
	}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Save writes the project file to path.
func (d *Document) Save(path string) error {
	data, err := d.Bytes(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Bytes serializes the document as it would be written to destPath. The
// loaded tree is not modified.
func (d *Document) Bytes(destPath string) ([]byte, error) {
	out := d.doc.Copy()
	twin := make(map[*etree.Element]*etree.Element)
	pairElements(&d.doc.Element, &out.Element, twin)

	w := &xmlWriter{
		settings:    etree.WriteSettings{CanonicalAttrVal: true, CanonicalText: true},
		closers:     make(map[*etree.Element]string),
		emptyCloser: d.emptyCloser,
	}
	for orig, closer := range d.closers {
		w.closers[twin[orig]] = closer
	}

	destDir := filepath.Dir(destPath)

	var keptRefs []*etree.Element
	var newRefs []Reference
	for _, r := range d.References {
		if r.elem == nil {
			newRefs = append(newRefs, r)
			continue
		}
		keptRefs = append(keptRefs, r.elem)
		if r.HintPath == "" || solution.ResolvePath(destDir, r.hintText) == r.HintPath {
			continue
		}
		if h := twin[r.elem].SelectElement("HintPath"); h != nil {
			h.SetText(solution.RelativePath(destPath, r.HintPath))
		}
	}

	var keptProjRefs []*etree.Element
	var newProjRefs []ProjectReference
	for _, pr := range d.ProjectReferences {
		if pr.elem == nil {
			newProjRefs = append(newProjRefs, pr)
			continue
		}
		keptProjRefs = append(keptProjRefs, pr.elem)
		if solution.ResolvePath(destDir, pr.includeText) != pr.Include {
			twin[pr.elem].CreateAttr("Include", solution.RelativePath(destPath, pr.Include))
		}
	}

	d.reconcile(out, twin, "Reference", keptRefs, func(indent string) []*etree.Element {
		elems := make([]*etree.Element, 0, len(newRefs))
		for _, r := range newRefs {
			elems = append(elems, r.element(destPath, indent, w))
		}
		return elems
	})
	d.reconcile(out, twin, "ProjectReference", keptProjRefs, func(indent string) []*etree.Element {
		elems := make([]*etree.Element, 0, len(newProjRefs))
		for _, pr := range newProjRefs {
			elems = append(elems, pr.element(destPath, indent))
		}
		return elems
	})

	for _, t := range out.Child {
		w.token(t)
	}
	data := w.buf.Bytes()

	if d.crlf {
		data = bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n"))
	}
	if d.hasBOM {
		data = append(append([]byte{}, utf8BOM...), data...)
	}

	return data, nil
}

// reconcile applies one reference list to out. New elements go after the last
// original element named tag, or into a fresh ItemGroup when there was none.
// Original elements missing from kept are removed, and an ItemGroup they leave
// empty goes with them.
func (d *Document) reconcile(out *etree.Document, twin map[*etree.Element]*etree.Element,
	tag string, kept []*etree.Element, build func(indent string) []*etree.Element) {
	originals := d.doc.FindElements("//" + tag)

	if len(originals) > 0 {
		anchor := twin[originals[len(originals)-1]]
		indent := leadingSpace(anchor)
		if added := build(indent); len(added) > 0 {
			insertAll(anchor.Parent(), anchor.Index()+1, indent, added)
		}
	} else {
		indent := groupIndent(out.Root()) + indentUnit
		if added := build(indent); len(added) > 0 {
			insertAll(newItemGroup(out.Root()), 0, indent, added)
		}
	}

	keep := make(map[*etree.Element]bool, len(kept))
	for _, e := range kept {
		keep[e] = true
	}
	for _, orig := range originals {
		if keep[orig] {
			continue
		}
		e := twin[orig]
		parent := e.Parent()
		removeWithIndent(e)
		if parent.Tag == "ItemGroup" && len(parent.ChildElements()) == 0 {
			removeWithIndent(parent)
		}
	}
}

// groupIndent returns the indentation of top-level elements under root.
func groupIndent(root *etree.Element) string {
	if pgs := root.SelectElements("PropertyGroup"); len(pgs) > 0 {
		if s := leadingSpace(pgs[len(pgs)-1]); s != "" {
			return s
		}
	}
	return "\n" + indentUnit
}

// newItemGroup inserts an empty <ItemGroup> after the last <PropertyGroup>,
// or at the end of the root element.
func newItemGroup(root *etree.Element) *etree.Element {
	group := etree.NewElement("ItemGroup")
	indent := groupIndent(root)

	index := len(root.Child)
	if pgs := root.SelectElements("PropertyGroup"); len(pgs) > 0 {
		index = pgs[len(pgs)-1].Index() + 1
	} else if index > 0 {
		if cd, ok := root.Child[index-1].(*etree.CharData); ok && isWhitespace(cd.Data) {
			index--
		}
	}

	root.InsertChildAt(index, etree.NewCharData(indent))
	root.InsertChildAt(index+1, group)
	group.AddChild(etree.NewCharData(indent))

	return group
}

// pairElements maps every element under a to its counterpart in the copy b.
func pairElements(a, b *etree.Element, pairs map[*etree.Element]*etree.Element) {
	pairs[a] = b
	for i, t := range a.Child {
		if e, ok := t.(*etree.Element); ok {
			pairElements(e, b.Child[i].(*etree.Element), pairs)
		}
	}
}

// leadingSpace returns the whitespace text directly in front of e, if any.
func leadingSpace(e *etree.Element) string {
	i := e.Index()
	if i == 0 {
		return ""
	}
	if cd, ok := e.Parent().Child[i-1].(*etree.CharData); ok && isWhitespace(cd.Data) {
		return cd.Data
	}
	return ""
}

func insertAll(parent *etree.Element, index int, indent string, elems []*etree.Element) {
	for _, e := range elems {
		if indent != "" {
			parent.InsertChildAt(index, etree.NewCharData(indent))
			index++
		}
		parent.InsertChildAt(index, e)
		index++
	}
}

func removeWithIndent(e *etree.Element) {
	parent := e.Parent()
	i := e.Index()
	parent.RemoveChildAt(i)
	if i > 0 {
		if cd, ok := parent.Child[i-1].(*etree.CharData); ok && isWhitespace(cd.Data) {
			parent.RemoveChildAt(i - 1)
		}
	}
}

func (r Reference) element(destPath, indent string, w *xmlWriter) *etree.Element {
	e := etree.NewElement("Reference")
	e.CreateAttr("Include", r.Name)
	if r.HintPath == "" {
		w.closers[e] = w.emptyCloser
		return e
	}
	e.AddChild(etree.NewCharData(indent + indentUnit))
	e.CreateElement("HintPath").SetText(solution.RelativePath(destPath, r.HintPath))
	e.AddChild(etree.NewCharData(indent))
	return e
}

func (pr ProjectReference) element(destPath, indent string) *etree.Element {
	e := etree.NewElement("ProjectReference")
	e.CreateAttr("Include", solution.RelativePath(destPath, pr.Include))
	e.AddChild(etree.NewCharData(indent + indentUnit))
	e.CreateElement("Project").SetText(pr.GUID)
	e.AddChild(etree.NewCharData(indent + indentUnit))
	e.CreateElement("Name").SetText(pr.Name)
	e.AddChild(etree.NewCharData(indent))
	return e
}

// xmlWriter serializes an etree tree. Childless elements end the way they
// were read; ones without a recorded closer get an explicit end tag.
type xmlWriter struct {
	buf         bytes.Buffer
	settings    etree.WriteSettings
	closers     map[*etree.Element]string
	emptyCloser string
}

func (w *xmlWriter) token(t etree.Token) {
	if e, ok := t.(*etree.Element); ok {
		w.element(e)
		return
	}
	t.WriteTo(&w.buf, &w.settings)
}

func (w *xmlWriter) element(e *etree.Element) {
	w.buf.WriteByte('<')
	w.buf.WriteString(e.FullTag())
	for i := range e.Attr {
		w.buf.WriteByte(' ')
		e.Attr[i].WriteTo(&w.buf, &w.settings)
	}

	if len(e.Child) == 0 {
		if closer, ok := w.closers[e]; ok {
			w.buf.WriteString(closer)
		} else {
			w.buf.WriteString("></" + e.FullTag() + ">")
		}
		return
	}

	w.buf.WriteByte('>')
	for _, c := range e.Child {
		w.token(c)
	}
	w.buf.WriteString("</" + e.FullTag() + ">")
}
