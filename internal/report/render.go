package report

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/pharmaflow/internal/model"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// Renderer turns a findings bundle into a document.
type Renderer interface {
	Render(ctx context.Context, b *model.FindingsBundle) (body []byte, contentType string, err error)
}

type unitView struct {
	Name       string
	Status     model.UnitStatus
	Error      string
	DurationMS int64
	Data       string
}

type reportView struct {
	RequestID   string
	Subject     string
	Summary     string
	GeneratedAt string
	Units       []unitView
}

// HTMLRenderer renders a self-contained HTML page.
type HTMLRenderer struct {
	now func() time.Time
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{now: time.Now}
}

func (r *HTMLRenderer) Render(_ context.Context, b *model.FindingsBundle) ([]byte, string, error) {
	view := reportView{
		RequestID:   b.RequestID,
		Subject:     b.Subject,
		Summary:     b.Summary,
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
	}

	names := make([]string, 0, len(b.Results))
	for name := range b.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := b.Results[name]
		uv := unitView{Name: name, Status: res.Status, Error: res.Error, DurationMS: res.DurationMS}
		if len(res.Data) > 0 {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, res.Data, "", "  "); err != nil {
				uv.Data = string(res.Data)
			} else {
				uv.Data = pretty.String()
			}
		}
		view.Units = append(view.Units, uv)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), ContentTypeHTML, nil
}

// PDFRenderer prints the HTML report to PDF with headless Chrome.
type PDFRenderer struct {
	html        *HTMLRenderer
	allocatorFn func(ctx context.Context) (context.Context, context.CancelFunc)
}

// NewPDFRenderer uses the default chromedp exec allocator. Chrome must be
// installed on the host.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		html: NewHTMLRenderer(),
		allocatorFn: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
		},
	}
}

func (r *PDFRenderer) Render(ctx context.Context, b *model.FindingsBundle) ([]byte, string, error) {
	html, _, err := r.html.Render(ctx, b)
	if err != nil {
		return nil, "", err
	}

	allocCtx, cancelAlloc := r.allocatorFn(ctx)
	defer cancelAlloc()
	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(cctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, "", fmt.Errorf("print pdf: %w", err)
	}
	return pdf, ContentTypePDF, nil
}
