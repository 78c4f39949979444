package export

import (
	"context"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/borrowreport/internal/report"
)

// Document is what a sink receives: the printable report region as a
// standalone HTML document, plus the rows behind it.
type Document struct {
	View   report.View
	Region []byte
}

// NewDocument renders view into an exportable document
func NewDocument(view report.View) (Document, error) {
	region, err := report.Document(view)
	if err != nil {
		return Document{}, err
	}
	return Document{View: view, Region: region}, nil
}

// FileName is the artifact name for doc in the given sink's format
func (d Document) FileName(s Sink) string {
	return report.FileName(d.View.Bucket, s.Ext())
}

// Sink turns a report document into an artifact
type Sink interface {
	Ext() string
	ContentType() string
	Export(ctx context.Context, w io.Writer, doc Document) error
}

// Formats lists the export formats New accepts
var Formats = []string{"pdf", "png", "html", "parquet"}

// New returns the sink for format. Browser-backed formats share b.
func New(format string, b *Browser) (Sink, error) {
	switch format {
	case "pdf":
		return &PDFSink{browser: b}, nil
	case "png":
		return &PNGSink{browser: b}, nil
	case "html":
		return HTMLSink{}, nil
	case "parquet":
		return ParquetSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// HTMLSink writes the printable document as-is
type HTMLSink struct{}

func (HTMLSink) Ext() string         { return "html" }
func (HTMLSink) ContentType() string { return "text/html; charset=utf-8" }

func (HTMLSink) Export(ctx context.Context, w io.Writer, doc Document) error {
	if _, err := w.Write(doc.Region); err != nil {
		return fmt.Errorf("failed to write HTML export: %w", err)
	}
	return nil
}
