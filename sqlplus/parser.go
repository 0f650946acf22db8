package sqlplus

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type parseMode int

const (
	modeOutside parseMode = iota
	modeInsideTable
)

type cellKind int

const (
	cellNone cellKind = iota
	cellHeader
	cellData
)

// tableParser holds the state of one ParseTable call.
type tableParser struct {
	cast    bool
	mode    parseMode
	kind    cellKind // kind of the most recent cell in the current row
	inCell  bool
	buf     strings.Builder
	columns []string
	headers []string
	values  []any
	rows    []Row
}

// ParseTable extracts the first HTML table of markup as a Result. The first
// header row names the columns; a later header row (sqlplus repeats it on
// each page) replaces them. Data rows whose cell count differs from the
// column count are dropped, as are rows with no cells. Markup without a
// table yields an empty Result.
func ParseTable(markup string, cast bool) Result {
	p := &tableParser{cast: cast}
	p.run(html.NewTokenizer(strings.NewReader(markup)))
	return Result{rows: p.rows}
}

func (p *tableParser) run(z *html.Tokenizer) {
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a reader error; either way there is nothing left.
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			p.open(atom.Lookup(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if done := p.close(atom.Lookup(name)); done {
				return
			}
		case html.TextToken:
			if p.inCell {
				p.buf.Write(z.Text())
			}
		}
	}
}

func (p *tableParser) open(tag atom.Atom) {
	if p.mode == modeOutside {
		if tag == atom.Table {
			p.mode = modeInsideTable
		}
		return
	}
	switch tag {
	case atom.Tr:
		p.resetRow()
	case atom.Th:
		p.startCell(cellHeader)
	case atom.Td:
		p.startCell(cellData)
	}
}

// close handles an end tag and reports whether parsing is complete.
func (p *tableParser) close(tag atom.Atom) bool {
	if p.mode != modeInsideTable {
		return false
	}
	switch tag {
	case atom.Th:
		if p.inCell {
			p.headers = append(p.headers, p.take())
		}
	case atom.Td:
		if p.inCell {
			text := p.take()
			if p.cast {
				p.values = append(p.values, Cast(text))
			} else {
				p.values = append(p.values, text)
			}
		}
	case atom.Tr:
		p.closeRow()
	case atom.Table:
		p.mode = modeOutside
		return true
	}
	return false
}

func (p *tableParser) startCell(kind cellKind) {
	p.kind = kind
	p.inCell = true
	p.buf.Reset()
}

func (p *tableParser) take() string {
	text := strings.TrimSpace(p.buf.String())
	p.buf.Reset()
	p.inCell = false
	return text
}

func (p *tableParser) closeRow() {
	switch p.kind {
	case cellHeader:
		p.columns = p.headers
	case cellData:
		if len(p.values) == len(p.columns) {
			p.rows = append(p.rows, newRow(p.columns, p.values))
		}
	}
	p.resetRow()
}

func (p *tableParser) resetRow() {
	p.kind = cellNone
	p.inCell = false
	p.buf.Reset()
	p.headers = nil
	p.values = nil
}
