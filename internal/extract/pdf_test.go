package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTextPDF creates a valid PDF with one page per text and proper xref offsets.
func buildTextPDF(pages ...string) []byte {
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
		stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", 5+2*i),
			pdfStream("", stream),
		)
	}
	return writePDF(objects...)
}

func pdfStream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// writePDF numbers objects from 1 and writes the xref table. Object 1 is the catalog.
func writePDF(objects ...string) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)
	return b.Bytes()
}

func TestExtract_PDFPagesInOrder(t *testing.T) {
	raw := buildTextPDF("Page 1", "Page 2", "Page 3")

	got, err := New(Options{}).Extract(context.Background(), bytes.NewReader(raw), "lecture.PDF")
	require.NoError(t, err)
	assert.Equal(t, "Page 1\nPage 2\nPage 3", got)
}

func TestExtract_PDFCorrupt(t *testing.T) {
	_, err := New(Options{}).Extract(context.Background(), strings.NewReader("%PDF-1.4\nnot really"), "broken.pdf")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeExtractionFailed, domainErr.Code)
	assert.Equal(t, "pdf", domainErr.Context["format"])
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"simple Tj", "BT /F1 12 Tf 72 720 Td (Hello World) Tj ET", "Hello World"},
		{"TJ kerning and word gaps", "BT [(Hel) -20 (lo) -300 (World)] TJ ET", "Hello World"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"utf16 hex string", "BT <FEFF00480069> Tj ET", "Hi"},
		{"escapes", `BT (a\(b\)c \101) Tj ET`, "a(b)c A"},
		{"balanced parentheses", "BT (x (y) z) Tj ET", "x (y) z"},
		{"T* breaks lines", "BT (one) Tj T* (two) Tj ET", "one\ntwo"},
		{"quote operator breaks lines", "BT (one) Tj (two) ' ET", "one\ntwo"},
		{"horizontal Td adds a space", "BT (a) Tj 10 0 Td (b) Tj ET", "a b"},
		{"vertical Td breaks lines", "BT (a) Tj 0 -14 Td (b) Tj ET", "a\nb"},
		{"separate text objects", "BT (first) Tj ET BT (second) Tj ET", "first\nsecond"},
		{"comments ignored", "% header\nBT (kept) Tj ET", "kept"},
		{"marked content dict", "/Span << /ActualText (x) >> BDC BT (body) Tj ET EMC", "body"},
		{"inline image skipped", "BI /W 1 /H 1 ID \x00\xff) EI BT (after) Tj ET", "after"},
		{"no text", "q 1 0 0 1 0 0 cm Q", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromContentStream([]byte(tt.stream)))
		})
	}
}

const testToUnicode = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Test-UCS def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
3 beginbfchar
<0029> <0046>
<003A> <006F>
<0033> <0078>
endbfchar
2 beginbfrange
<0040> <0045> <0061>
<0050> <0051> [<0048> <0069>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

// buildType0PDF creates a page whose text uses an Identity-H font with a
// ToUnicode map, partly drawn through a Form XObject.
func buildType0PDF() []byte {
	return writePDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 8 0 R /Resources << /Font << /F1 4 0 R >> /XObject << /Fm1 9 0 R >> >> >>",
		"<< /Type /Font /Subtype /Type0 /BaseFont /TestSans /Encoding /Identity-H /DescendantFonts [5 0 R] /ToUnicode 7 0 R >>",
		"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /TestSans /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor 6 0 R /CIDToGIDMap /Identity >>",
		"<< /Type /FontDescriptor /FontName /TestSans /Flags 32 /FontBBox [0 -200 1000 900] /ItalicAngle 0 /Ascent 900 /Descent -200 /CapHeight 700 /StemV 80 >>",
		pdfStream("", testToUnicode),
		pdfStream("", "BT /F1 12 Tf 72 720 Td <0029003A0033> Tj ET\n/Fm1 Do"),
		pdfStream("/Type /XObject /Subtype /Form /BBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >>",
			"BT /F1 12 Tf 72 700 Td <0041004400400043> Tj ET"),
	)
}

func TestExtract_PDFType0FontWithToUnicode(t *testing.T) {
	got, err := New(Options{}).Extract(context.Background(), bytes.NewReader(buildType0PDF()), "cid.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Fox\nbead", got)
}

func TestParseToUnicodeCMap(t *testing.T) {
	codeLens, mapping := parseToUnicodeCMap([]byte(testToUnicode), 1)

	assert.Equal(t, []int{2}, codeLens)
	assert.Equal(t, "F", mapping["\x00\x29"])
	assert.Equal(t, "a", mapping["\x00\x40"])
	assert.Equal(t, "f", mapping["\x00\x45"])
	assert.Equal(t, "H", mapping["\x00\x50"])
	assert.Equal(t, "i", mapping["\x00\x51"])
	assert.NotContains(t, mapping, "\x00\x46")
}

func TestParseToUnicodeCMap_MixedCodeLengths(t *testing.T) {
	cmap := `2 begincodespacerange
<00> <7F>
<8000> <FFFF>
endcodespacerange
2 beginbfchar
<41> <0041>
<8141> <00E9>
endbfchar
1 beginbfrange
<8150> <8150> <D83DDE00>
endbfrange`
	codeLens, mapping := parseToUnicodeCMap([]byte(cmap), 2)

	assert.Equal(t, []int{1, 2}, codeLens)
	font := &pdfFont{composite: true, codeLens: codeLens, toUnicode: mapping}
	assert.Equal(t, "AéA😀", font.decode([]byte{0x41, 0x81, 0x41, 0x41, 0x81, 0x50}))
}

// staticResources serves fonts and forms from maps.
type staticResources struct {
	fonts map[string]*pdfFont
	forms map[string]string
}

func (r staticResources) Font(name string) *pdfFont { return r.fonts[name] }

func (r staticResources) Form(name string) ([]byte, contentResources, bool) {
	content, ok := r.forms[name]
	return []byte(content), r, ok
}

func TestContentText_FontAware(t *testing.T) {
	_, mapping := parseToUnicodeCMap([]byte(testToUnicode), 2)
	res := staticResources{
		fonts: map[string]*pdfFont{
			"F1": {composite: true, codeLens: []int{2}, toUnicode: mapping},
			"F2": {codeLens: []int{1}},
			"F3": {composite: true, codeLens: []int{2}},
		},
		forms: map[string]string{
			"Fm1":  "BT /F1 10 Tf <00500051> Tj ET",
			"Loop": "BT /F2 10 Tf (x) Tj ET /Loop Do",
		},
	}

	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"identity-h string through ToUnicode", "BT /F1 12 Tf 72 720 Td <0029003A0033> Tj ET", "Fox"},
		{"TJ through ToUnicode", "BT /F1 12 Tf [<0029> -20 <003A0033> -400 <0040>] TJ ET", "Fox a"},
		{"font switch mid line", "BT /F1 12 Tf <0029> Tj /F2 12 Tf (ig) Tj ET", "Fig"},
		{"simple font decodes bytes", "BT /F2 12 Tf (plain) Tj ET", "plain"},
		{"composite font without map is dropped", "BT /F3 12 Tf <0029003A> Tj ET", ""},
		{"unknown font falls back", "BT /F9 12 Tf (kept) Tj ET", "kept"},
		{"form xobject text", "BT /F2 12 Tf (before) Tj ET /Fm1 Do", "before\nHi"},
		{"self-referencing form stops", "/Loop Do", strings.TrimSuffix(strings.Repeat("x\n", maxFormDepth), "\n")},
		{"unknown xobject ignored", "/Im1 Do BT (text) Tj ET", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentText([]byte(tt.stream), res))
		})
	}
}
