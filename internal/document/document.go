// Package document extracts readable text from PDF and plain-text files.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/tuiread/internal/logger"
)

// Document is the extracted content of one file.
type Document struct {
	Path  string
	Pages int
	Text  string
	Words []string
}

// Name returns the file name without directories.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

var disablePDFCPUConfig sync.Once

// Load reads path and splits its text into words. PDFs are read page by page
// and ctx is checked between pages. Empty text is not an error.
func Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, loadError(path, "open", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, loadError(path, "stat", err)
	}
	if !info.Mode().IsRegular() {
		return Document{}, loadError(path, "stat", ErrNotAFile)
	}

	var (
		text  string
		pages int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, pages, err = extractPDF(ctx, path)
	case ".txt", ".text", ".md":
		text, err = readPlain(path)
		pages = 1
	default:
		err = loadError(path, "open", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path)))
	}
	if err != nil {
		return Document{}, err
	}

	text = norm.NFC.String(text)
	doc := Document{
		Path:  path,
		Pages: pages,
		Text:  text,
		Words: Words(text),
	}
	log := logger.WithComponent("document")
	log.Info().Str("path", path).Int("pages", doc.Pages).Int("words", len(doc.Words)).Msg("document loaded")
	return doc, nil
}

// Words splits text on whitespace after Unicode normalization.
func Words(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", loadError(path, "open", err)
	}
	return string(data), nil
}

func extractPDF(ctx context.Context, path string) (text string, pages int, err error) {
	log := logger.WithComponent("document")
	probe, perr := probePDF(path)
	if perr != nil {
		log.Warn().Err(perr).Str("path", path).Msg("pdf probe failed; trying extraction anyway")
	} else {
		log.Debug().Str("path", path).Int("pages", probe.pages).Bool("encrypted", probe.encrypted).Msg("pdf probed")
		if err := probe.check(path); err != nil {
			return "", 0, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = loadError(path, "extract", fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			err = fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return "", 0, loadError(path, "open", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only document.
			_ = cerr
		}
	}()

	var sb strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, loadError(path, "extract", err)
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("skipping unreadable page")
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), probe.pageCount(pages), nil
}

type pdfProbe struct {
	pages     int
	encrypted bool
}

// check rejects encrypted files before text extraction.
func (p pdfProbe) check(path string) error {
	if p.encrypted {
		return loadError(path, "open", ErrEncrypted)
	}
	return nil
}

// pageCount prefers the extracted page count and falls back to the probe.
func (p pdfProbe) pageCount(extracted int) int {
	if extracted > 0 {
		return extracted
	}
	return p.pages
}

func probePDF(path string) (pdfProbe, error) {
	disablePDFCPUConfig.Do(api.DisableConfigDir)

	file, err := os.Open(path)
	if err != nil {
		return pdfProbe{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only probe.
			_ = cerr
		}
	}()

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	pctx, err := api.ReadContext(file, conf)
	if err != nil {
		return pdfProbe{}, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return pdfProbe{}, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return pdfProbe{pages: pctx.PageCount, encrypted: pctx.Encrypt != nil}, nil
}
