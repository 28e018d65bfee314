package extract

import (
	"slices"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// contentResources resolves the names a content stream refers to.
type contentResources interface {
	// Font returns the font registered under name, or nil when unknown.
	Font(name string) *pdfFont
	// Form returns the decoded content and resources of a Form XObject.
	Form(name string) ([]byte, contentResources, bool)
}

// pdfFont decodes shown strings into text.
type pdfFont struct {
	// composite fonts use multi-byte codes that only mean something through toUnicode.
	composite bool
	// codeLens holds the code lengths in bytes, ascending.
	codeLens  []int
	toUnicode map[string]string
}

func (f *pdfFont) decode(b []byte) string {
	if f.toUnicode == nil {
		if f.composite {
			return ""
		}
		return decodeTextBytes(b)
	}

	var runes []rune
	for i := 0; i < len(b); {
		n := 0
		for _, l := range f.codeLens {
			if i+l > len(b) {
				break
			}
			if s, ok := f.toUnicode[string(b[i:i+l])]; ok {
				runes = append(runes, []rune(s)...)
				n = l
				break
			}
		}
		if n == 0 {
			n = f.codeLens[0]
			if !f.composite {
				runes = append(runes, rune(b[i]))
			}
		}
		i += n
	}
	return printableText(runes)
}

// parseToUnicodeCMap reads the codespace ranges and bfchar/bfrange mappings
// of a ToUnicode CMap. defaultLen applies when no codespace range is declared.
func parseToUnicodeCMap(data []byte, defaultLen int) ([]int, map[string]string) {
	var (
		codeLens []int
		mapping  = make(map[string]string)
		operands []pdfToken
	)
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
		case "endcodespacerange":
			for i := 0; i+1 < len(operands); i += 2 {
				if n := len(operands[i].raw); n > 0 && !slices.Contains(codeLens, n) {
					codeLens = append(codeLens, n)
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(operands); i += 2 {
				src, dst := operands[i], operands[i+1]
				if src.kind == tokString && dst.kind == tokString && len(src.raw) > 0 {
					mapping[string(src.raw)] = utf16Text(dst.raw)
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(operands); i += 3 {
				addBFRange(mapping, operands[i], operands[i+1], operands[i+2])
			}
		}
		operands = operands[:0]
	}

	if len(codeLens) == 0 {
		codeLens = []int{defaultLen}
	}
	slices.Sort(codeLens)
	return codeLens, mapping
}

// A bfrange spans at most this many codes.
const maxBFRange = 1 << 16

func addBFRange(mapping map[string]string, lo, hi, dst pdfToken) {
	if lo.kind != tokString || hi.kind != tokString {
		return
	}
	n := len(lo.raw)
	if n == 0 || n > 4 || len(hi.raw) != n {
		return
	}
	from, to := codeValue(lo.raw), codeValue(hi.raw)
	if to < from || to-from >= maxBFRange {
		return
	}

	for k := uint32(0); k <= to-from; k++ {
		code := string(codeBytes(from+k, n))
		switch dst.kind {
		case tokString:
			mapping[code] = utf16Text(incrementLast(dst.raw, k))
		case tokArray:
			if int(k) < len(dst.items) && dst.items[k].kind == tokString {
				mapping[code] = utf16Text(dst.items[k].raw)
			}
		}
	}
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func codeBytes(v uint32, n int) []byte {
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// incrementLast adds k to the final UTF-16 unit of a bfrange destination.
func incrementLast(b []byte, k uint32) []byte {
	out := slices.Clone(b)
	switch n := len(out); {
	case n >= 2:
		u := uint32(out[n-2])<<8 | uint32(out[n-1])
		u += k
		out[n-2], out[n-1] = byte(u>>8), byte(u)
	case n == 1:
		out[0] += byte(k)
	}
	return out
}

// utf16Text decodes big-endian UTF-16 as used by ToUnicode destinations.
func utf16Text(b []byte) string {
	if len(b)%2 == 1 {
		b = append(slices.Clone(b), 0)
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}

// pageResources resolves fonts and forms from a pdfcpu resource dictionary.
type pageResources struct {
	xref  *model.XRefTable
	dict  types.Dict
	fonts map[string]*pdfFont
}

func newPageResources(xref *model.XRefTable, dict types.Dict) *pageResources {
	return &pageResources{xref: xref, dict: dict, fonts: make(map[string]*pdfFont)}
}

// category returns a sub-dictionary such as /Font or /XObject.
func (r *pageResources) category(key string) types.Dict {
	o, ok := r.dict.Find(key)
	if !ok {
		return nil
	}
	d, err := r.xref.DereferenceDict(o)
	if err != nil {
		return nil
	}
	return d
}

func (r *pageResources) Font(name string) *pdfFont {
	if f, ok := r.fonts[name]; ok {
		return f
	}
	f := r.loadFont(name)
	r.fonts[name] = f
	return f
}

func (r *pageResources) loadFont(name string) *pdfFont {
	fonts := r.category("Font")
	if fonts == nil {
		return nil
	}
	o, ok := fonts.Find(name)
	if !ok {
		return nil
	}
	fd, err := r.xref.DereferenceDict(o)
	if err != nil || fd == nil {
		return nil
	}

	f := &pdfFont{codeLens: []int{1}}
	if st := fd.NameEntry("Subtype"); st != nil && *st == "Type0" {
		f.composite = true
		f.codeLens = []int{2}
	}

	tu, ok := fd.Find("ToUnicode")
	if !ok {
		return f
	}
	sd, _, err := r.xref.DereferenceStreamDict(tu)
	if err != nil || sd == nil {
		return f
	}
	if err := sd.Decode(); err != nil {
		return f
	}
	f.codeLens, f.toUnicode = parseToUnicodeCMap(sd.Content, f.codeLens[0])
	return f
}

func (r *pageResources) Form(name string) ([]byte, contentResources, bool) {
	xobjects := r.category("XObject")
	if xobjects == nil {
		return nil, nil, false
	}
	o, ok := xobjects.Find(name)
	if !ok {
		return nil, nil, false
	}
	sd, _, err := r.xref.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil, nil, false
	}
	if st := sd.Dict.NameEntry("Subtype"); st == nil || *st != "Form" {
		return nil, nil, false
	}
	if err := sd.Decode(); err != nil {
		return nil, nil, false
	}

	// Forms without their own resources use the ones of the invoking stream.
	var sub contentResources = r
	if ro, ok := sd.Dict.Find("Resources"); ok {
		if d, err := r.xref.DereferenceDict(ro); err == nil && d != nil {
			sub = newPageResources(r.xref, d)
		}
	}
	return sd.Content, sub, true
}
