// Package extract turns uploaded documents into plain text.
//
// Supported formats, chosen by file extension (case-insensitive):
//   - .txt: decoded verbatim, byte-order mark honored and stripped
//   - .pdf: page content streams via pdfcpu, one block per page in page order
//   - .docx: body paragraphs of the main document part in document order
//
// Extraction is all-or-nothing: either the full text is returned or an error.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Format is a supported document extension, including the leading dot
type Format string

const (
	FormatTXT  Format = ".txt"
	FormatPDF  Format = ".pdf"
	FormatDOCX Format = ".docx"
)

// Detect returns the document format for filename. Unknown extensions yield
// an UNSUPPORTED_FORMAT domain error carrying the extension.
func Detect(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch Format(ext) {
	case FormatTXT, FormatPDF, FormatDOCX:
		return Format(ext), nil
	default:
		return "", domain.NewUnsupportedFormatError(ext)
	}
}

// SupportedFormats returns all supported extensions.
func SupportedFormats() []string {
	return []string{string(FormatTXT), string(FormatPDF), string(FormatDOCX)}
}

// Options configures an Extractor
type Options struct {
	// MaxFileSize caps the number of bytes read from an upload. Zero uses the configured default.
	MaxFileSize int64
	// Cache, when set, stores extracted text keyed by content hash.
	Cache    domain.Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Extractor implements domain.DocumentExtractor. It is safe for concurrent use.
type Extractor struct {
	maxFileSize int64
	cache       domain.Cache
	cacheTTL    time.Duration
	sfGroup     singleflight.Group
	logger      *zap.Logger
}

const defaultCacheTTL = 24 * time.Hour

// New creates an Extractor
func New(opts Options) *Extractor {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = config.DefaultMaxFileSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{
		maxFileSize: opts.MaxFileSize,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		logger:      opts.Logger,
	}
}

// Extract reads r fully and returns its plain text.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	format, err := Detect(filename)
	if err != nil {
		return "", err
	}

	data, err := e.readAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	var text string
	if e.cache != nil {
		text, err = e.extractCached(ctx, format, data)
	} else {
		text, err = extractBytes(format, data)
	}
	if err != nil {
		e.logger.Warn("Document extraction failed",
			zap.String("filename", filename),
			zap.String("format", string(format)),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return "", err
	}

	e.logger.Debug("Document extracted",
		zap.String("filename", filename),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Int("characters", len(text)),
		zap.Duration("duration", time.Since(start)))
	return text, nil
}

// readAll buffers the whole upload; the PDF and DOCX readers need random access.
func (e *Extractor) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxFileSize+1))
	if err != nil {
		return nil, domain.NewInternalError("Failed to read uploaded document", err)
	}
	if int64(len(data)) > e.maxFileSize {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("Document exceeds the maximum size of %d bytes", e.maxFileSize))
	}
	return data, nil
}

func extractBytes(format Format, data []byte) (string, error) {
	switch format {
	case FormatTXT:
		return extractText(data)
	case FormatPDF:
		text, err := extractPDF(bytes.NewReader(data))
		if err != nil {
			return "", domain.NewExtractionFailedError("pdf", err)
		}
		return text, nil
	case FormatDOCX:
		text, err := extractDocx(data)
		if err != nil {
			return "", domain.NewExtractionFailedError("docx", err)
		}
		return text, nil
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

var _ domain.DocumentExtractor = (*Extractor)(nil)
