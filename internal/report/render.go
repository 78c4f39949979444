package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"bucketLabel": BucketLabel,
	"imageSrc":    imageSrc,
}).ParseFS(templateFS, "templates/*.html"))

// RegionID is the element id of the printable report region
const RegionID = "borrowed-books-report"

// PageData feeds the interactive report page
type PageData struct {
	View       View
	Buckets    []borrowing.Bucket
	Formats    []string
	ExportPath string
}

type documentData struct {
	View     View
	FileBase string
}

// BucketLabel is the display name of a bucket
func BucketLabel(b borrowing.Bucket) string {
	switch b {
	case borrowing.BucketDay:
		return "Today"
	case borrowing.BucketWeek:
		return "Last 7 days"
	case borrowing.BucketMonth:
		return "This month"
	default:
		return "All"
	}
}

// imageSrc only lets through URLs a thumbnail can use; anything else renders no image.
func imageSrc(raw string) template.URL {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//"):
		return template.URL(raw)
	default:
		return ""
	}
}

// RenderRegion writes only the report region
func RenderRegion(w io.Writer, view View) error {
	if err := templates.ExecuteTemplate(w, "region", view); err != nil {
		return fmt.Errorf("failed to render report region: %w", err)
	}
	return nil
}

// RenderPage writes the interactive report page
func RenderPage(w io.Writer, data PageData) error {
	if data.Buckets == nil {
		data.Buckets = borrowing.Buckets
	}
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render report page: %w", err)
	}
	return nil
}

// RenderDocument writes a standalone printable HTML document that contains
// the report region and nothing else.
func RenderDocument(w io.Writer, view View) error {
	data := documentData{
		View:     view,
		FileBase: strings.TrimSuffix(FileName(view.Bucket, "html"), ".html"),
	}
	if err := templates.ExecuteTemplate(w, "document", data); err != nil {
		return fmt.Errorf("failed to render report document: %w", err)
	}
	return nil
}

// Document renders the printable document into memory
func Document(view View) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderDocument(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName names an exported report artifact after its bucket
func FileName(bucket borrowing.Bucket, ext string) string {
	if bucket == "" {
		bucket = borrowing.BucketAll
	}
	return fmt.Sprintf("borrowed-books-%s.%s", bucket, strings.TrimPrefix(ext, "."))
}
