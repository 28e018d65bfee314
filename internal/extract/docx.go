package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	defaultDocumentPart = "word/document.xml"
	officeDocumentRel   = "/officeDocument"
)

// Markup compatibility namespace. mc:Fallback repeats the content of the
// preceding mc:Choice for older readers.
const markupCompatibilityNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"

// WordprocessingML namespaces, transitional and strict.
var wordNamespaces = map[string]bool{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main": true,
	"http://purl.oclc.org/ooxml/wordprocessingml/main":             true,
}

// extractDocx returns the body paragraphs of the main document part joined
// with newlines. An archive without a main part yields "".
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docFile := files[mainDocumentPart(files)]
	if docFile == nil {
		return "", nil
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docFile.Name, err)
	}
	defer rc.Close()

	paragraphs, err := bodyParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", docFile.Name, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

type packageRelationships struct {
	Relationships []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// mainDocumentPart resolves the officeDocument relationship from the package
// rels, falling back to the conventional word/document.xml.
func mainDocumentPart(files map[string]*zip.File) string {
	relsFile := files["_rels/.rels"]
	if relsFile == nil {
		return defaultDocumentPart
	}
	rc, err := relsFile.Open()
	if err != nil {
		return defaultDocumentPart
	}
	defer rc.Close()

	var rels packageRelationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return defaultDocumentPart
	}
	for _, rel := range rels.Relationships {
		if strings.HasSuffix(rel.Type, officeDocumentRel) && rel.Target != "" {
			return strings.TrimPrefix(path.Clean("/"+rel.Target), "/")
		}
	}
	return defaultDocumentPart
}

// bodyParagraphs walks w:body and returns one string per top-level paragraph,
// table cell paragraphs included. Paragraphs nested in text boxes are folded
// into their enclosing paragraph. mc:Fallback content is skipped.
func bodyParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inBody     bool
		pDepth     int
		inText     bool
		inProps    bool
		skipDepth  int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if skipDepth > 0 {
			switch tok.(type) {
			case xml.StartElement:
				skipDepth++
			case xml.EndElement:
				skipDepth--
			}
			continue
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == markupCompatibilityNS && t.Name.Local == "Fallback" {
				skipDepth = 1
				continue
			}
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					continue
				}
				if pDepth == 0 {
					current.Reset()
				}
				pDepth++
			case "pPr":
				inProps = true
			case "t":
				inText = pDepth > 0
			case "tab":
				// w:tab under w:pPr is a tab stop definition, not content.
				if pDepth > 0 && !inProps {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if pDepth > 0 {
					current.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = false
			case "pPr":
				inProps = false
			case "t":
				inText = false
			case "p":
				if pDepth == 0 {
					continue
				}
				pDepth--
				if pDepth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			}
		}
	}

	return paragraphs, nil
}
