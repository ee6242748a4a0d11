// Package report renders findings bundles into downloadable documents.
package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

type Config struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"ENABLED"`
	Format  Format `mapstructure:"format" envconfig:"FORMAT"`
	// StorePath is the SQLite file holding artifacts. ":memory:" is allowed.
	StorePath string `mapstructure:"store_path" envconfig:"STORE_PATH"`
	// PublicBaseURL prefixes the artifact links handed back to clients.
	PublicBaseURL string `mapstructure:"public_base_url" envconfig:"PUBLIC_BASE_URL"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Format:        FormatHTML,
		StorePath:     ":memory:",
		PublicBaseURL: "http://localhost:8000",
	}
}

// Producer turns a completed bundle into an artifact and returns its URL.
type Producer interface {
	Produce(ctx context.Context, b *model.FindingsBundle) (string, error)
}

// DocumentProducer renders bundles and keeps them in a Store.
type DocumentProducer struct {
	renderer Renderer
	store    *Store
	baseURL  string
	logger   logging.Logger
}

func NewDocumentProducer(renderer Renderer, store *Store, publicBaseURL string, logger logging.Logger) (*DocumentProducer, error) {
	if renderer == nil || store == nil {
		return nil, errors.New("renderer and store are required")
	}
	if _, err := url.Parse(publicBaseURL); err != nil {
		return nil, fmt.Errorf("invalid public base url: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &DocumentProducer{
		renderer: renderer,
		store:    store,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:   logger,
	}, nil
}

// NewRenderer returns the renderer for format, defaulting to HTML.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatHTML, "":
		return NewHTMLRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func (p *DocumentProducer) Produce(ctx context.Context, b *model.FindingsBundle) (string, error) {
	if b == nil || b.RequestID == "" {
		return "", errors.New("bundle with request id is required")
	}
	body, contentType, err := p.renderer.Render(ctx, b)
	if err != nil {
		return "", err
	}
	if err := p.store.Save(ctx, Artifact{RequestID: b.RequestID, ContentType: contentType, Body: body}); err != nil {
		return "", err
	}
	link := p.baseURL + "/api/v1/reports/" + url.PathEscape(b.RequestID)
	p.logger.Info("report produced",
		logging.Field{Key: "request_id", Value: b.RequestID},
		logging.Field{Key: "content_type", Value: contentType},
		logging.Field{Key: "url", Value: link})
	return link, nil
}
