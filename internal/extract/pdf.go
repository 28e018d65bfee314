package extract

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating a config dir under the user's home.
	api.DisableConfigDir()
}

// extractPDF returns the text of pages 1..N joined with newlines.
func extractPDF(rs io.ReadSeeker) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		text, err := extractPageText(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func extractPageText(ctx *model.Context, pageNr int) (string, error) {
	pageDict, _, inherited, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return "", err
	}
	data, err := ctx.PageContent(pageDict, pageNr)
	if err != nil {
		// Pages without a content stream have no text.
		if errors.Is(err, model.ErrNoContent) {
			return "", nil
		}
		return "", err
	}
	var res contentResources
	if inherited != nil && inherited.Resources != nil {
		res = newPageResources(ctx.XRefTable, inherited.Resources)
	}
	return contentText(data, res), nil
}

// TJ offsets below this (in thousandths of an em) are rendered as a word gap.
const tjSpaceThreshold = -200

// Form XObjects nested deeper than this are not followed.
const maxFormDepth = 8

// textFromContentStream interprets a content stream that has no resources,
// so strings are decoded without font information.
func textFromContentStream(data []byte) string {
	return contentText(data, nil)
}

// contentText interprets the text-showing operators of a page content stream.
// Lines are broken on T*, ', ", ET and vertical moves. Strings are decoded
// through the font selected by Tf when res can resolve it.
func contentText(data []byte, res contentResources) string {
	w := &textWriter{}
	w.run(data, res, nil, 0)
	w.flush()
	return strings.Join(w.lines, "\n")
}

type textWriter struct {
	lines []string
	line  strings.Builder
}

func (w *textWriter) flush() {
	if s := strings.TrimSpace(w.line.String()); s != "" {
		w.lines = append(w.lines, s)
	}
	w.line.Reset()
}

func (w *textWriter) space() {
	if w.line.Len() > 0 && !strings.HasSuffix(w.line.String(), " ") {
		w.line.WriteByte(' ')
	}
}

func (w *textWriter) show(tok pdfToken, font *pdfFont) {
	if font == nil {
		w.line.WriteString(tok.text)
		return
	}
	w.line.WriteString(font.decode(tok.raw))
}

func (w *textWriter) run(data []byte, res contentResources, font *pdfFont, depth int) {
	var operands []pdfToken
	lastString := func() (pdfToken, bool) {
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].kind == tokString {
				return operands[i], true
			}
		}
		return pdfToken{}, false
	}
	firstName := func() (string, bool) {
		for _, op := range operands {
			if op.kind == tokOther && strings.HasPrefix(op.text, "/") {
				return op.text[1:], true
			}
		}
		return "", false
	}

	lex := &contentLexer{data: data}
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tf":
			font = nil
			if name, ok := firstName(); ok && res != nil {
				font = res.Font(name)
			}
		case "Tj":
			if s, ok := lastString(); ok {
				w.show(s, font)
			}
		case "'", "\"":
			w.flush()
			if s, ok := lastString(); ok {
				w.show(s, font)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				for _, el := range operands[n-1].items {
					switch el.kind {
					case tokString:
						w.show(el, font)
					case tokNumber:
						if el.num < tjSpaceThreshold {
							w.space()
						}
					}
				}
			}
		case "Td", "TD":
			if n := len(operands); n >= 2 && operands[n-1].kind == tokNumber && operands[n-1].num != 0 {
				w.flush()
			} else {
				w.space()
			}
		case "T*", "ET":
			w.flush()
		case "Tm":
			w.flush()
		case "Do":
			if name, ok := firstName(); ok && res != nil && depth < maxFormDepth {
				if content, sub, ok := res.Form(name); ok {
					w.flush()
					w.run(content, sub, font, depth+1)
					w.flush()
				}
			}
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}
}

type pdfTokenKind int

const (
	tokOperator pdfTokenKind = iota
	tokString
	tokNumber
	tokArray
	tokOther
)

type pdfToken struct {
	kind  pdfTokenKind
	text  string
	raw   []byte
	num   float64
	items []pdfToken
}

// contentLexer tokenizes a content stream just far enough to find text operands.
type contentLexer struct {
	data []byte
	pos  int
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *contentLexer) next() (pdfToken, bool) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return pdfToken{}, false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		l.pos++
		raw := l.literalString()
		return pdfToken{kind: tokString, text: decodeTextBytes(raw), raw: raw}, true
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.pos += 2
		return pdfToken{kind: tokOther, text: "<<"}, true
	case c == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>':
		l.pos += 2
		return pdfToken{kind: tokOther, text: ">>"}, true
	case c == '<':
		l.pos++
		raw := l.hexString()
		return pdfToken{kind: tokString, text: decodeTextBytes(raw), raw: raw}, true
	case c == '[':
		l.pos++
		var items []pdfToken
		for {
			l.skipSpaceAndComments()
			if l.pos >= len(l.data) {
				break
			}
			if l.data[l.pos] == ']' {
				l.pos++
				break
			}
			item, ok := l.next()
			if !ok {
				break
			}
			items = append(items, item)
		}
		return pdfToken{kind: tokArray, items: items}, true
	case c == '/':
		l.pos++
		return pdfToken{kind: tokOther, text: "/" + l.regular()}, true
	case isPDFDelimiter(c):
		// Stray ')', '>', ']' or braces.
		l.pos++
		return pdfToken{kind: tokOther, text: string(c)}, true
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return pdfToken{kind: tokNumber, num: n}, true
	}
	return pdfToken{kind: tokOperator, text: word}, true
}

func (l *contentLexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literalString reads a (...) string body, positioned just after the '('.
func (l *contentLexer) literalString() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// Line continuation.
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// hexString reads a <...> string body, positioned just after the '<'.
func (l *contentLexer) hexString() []byte {
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, _ := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		out = append(out, byte(v))
	}
	return out
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// skipInlineImage advances past binary inline image data up to the EI operator.
func (l *contentLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isPDFWhitespace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isPDFWhitespace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// decodeTextBytes maps string bytes to text. UTF-16BE is used when the string
// carries a BOM, otherwise bytes are read as Latin-1. Control characters are dropped.
func decodeTextBytes(b []byte) string {
	var runes []rune
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, len(b)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		runes = utf16.Decode(units)
	} else {
		runes = make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
	}
	return printableText(runes)
}

// printableText maps tabs to spaces and drops other control characters.
func printableText(runes []rune) string {
	var sb strings.Builder
	for _, r := range runes {
		switch {
		case r == '\t':
			sb.WriteRune(' ')
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
