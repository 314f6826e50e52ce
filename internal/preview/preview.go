// Package preview renders the tabular preview of a score table shown before
// a report is generated.
package preview

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Source is anything that can describe itself as a header and rows.
type Source interface {
	Preview() (header []string, rows [][]string)
}

// Table builds a <table> node for src. The first column is a row header.
func Table(src Source) *html.Node {
	header, rows := src.Preview()

	table := element(atom.Table, html.Attribute{Key: "class", Val: "scores"})
	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, h := range header {
		tr.AppendChild(cell(atom.Th, h, html.Attribute{Key: "scope", Val: "col"}))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range rows {
		tr := element(atom.Tr)
		for i, v := range row {
			if i == 0 {
				tr.AppendChild(cell(atom.Th, v, html.Attribute{Key: "scope", Val: "row"}))
				continue
			}
			tr.AppendChild(cell(atom.Td, v))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

// Render writes the table fragment for src to w.
func Render(w io.Writer, src Source) error {
	return html.Render(w, Table(src))
}

// String returns the table fragment for src.
func String(src Source) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func cell(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
