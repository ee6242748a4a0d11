package agents

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

const (
	maxPatentSummaries = 10
	expiryHorizonYears = 3
	patentDateLayout   = "2006-01-02"
)

// Patent is one row of the search results page.
type Patent struct {
	Number   string `json:"number"`
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
}

// ExpiryAnalysis summarizes patent expiry dates.
type ExpiryAnalysis struct {
	EarliestExpiry        string  `json:"earliest_expiry,omitempty"`
	AverageRemainingYears float64 `json:"average_remaining_years"`
	ExpiringSoon          int     `json:"patents_expiring_soon"`
}

// CompetitionAnalysis summarizes who holds the patents.
type CompetitionAnalysis struct {
	CompetingEntities int      `json:"competing_entities"`
	Assignees         []string `json:"assignees"`
}

// PatentPayload is the patent landscape for one molecule.
type PatentPayload struct {
	TotalPatents int                 `json:"total_patents"`
	Expiry       ExpiryAnalysis      `json:"expiry_analysis"`
	Competition  CompetitionAnalysis `json:"competition"`
	Patents      []Patent            `json:"patents"`
}

// PatentAgent scrapes a patent search results page.
//
// The page lists one patent per `table.patents tr.patent` row with
// td.number, td.title, td.assignee and td.expiry cells. An optional
// `#results[data-total]` carries the full hit count when the page is
// truncated.
type PatentAgent struct {
	cfg     ProviderConfig
	wc      webclient.WebClient
	timeout time.Duration
	now     func() time.Time
}

func NewPatentAgent(cfg ProviderConfig, wc webclient.WebClient, timeout time.Duration) *PatentAgent {
	return &PatentAgent{cfg: cfg, wc: wc, timeout: timeout, now: time.Now}
}

func (a *PatentAgent) Name() string { return UnitPatents }

func (a *PatentAgent) Fetch(ctx context.Context, q Query) (any, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	params := url.Values{"q": {q.Subject}, "rows": {"100"}}
	body, err := get(ctx, a.wc, endpoint(a.cfg.BaseURL, "search", params), bearer(a.cfg.APIKey))
	if err != nil {
		return nil, err
	}

	patents, total, err := parsePatentPage(body)
	if err != nil {
		return nil, err
	}
	return analyzePatents(patents, total, a.now()), nil
}

func parsePatentPage(body []byte) ([]Patent, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: parse html: %v", ErrMalformedPayload, err)
	}

	results := doc.Find("table.patents")
	if results.Length() == 0 {
		return nil, 0, fmt.Errorf("%w: no patents table", ErrMalformedPayload)
	}

	var patents []Patent
	results.Find("tr.patent").Each(func(_ int, row *goquery.Selection) {
		p := Patent{
			Number:   strings.TrimSpace(row.Find("td.number").Text()),
			Title:    strings.TrimSpace(row.Find("td.title").Text()),
			Assignee: strings.TrimSpace(row.Find("td.assignee").Text()),
			Expiry:   strings.TrimSpace(row.Find("td.expiry").Text()),
		}
		if p.Number != "" {
			patents = append(patents, p)
		}
	})

	total := len(patents)
	if v, ok := doc.Find("#results").Attr("data-total"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= total {
			total = n
		}
	}
	return patents, total, nil
}

func analyzePatents(patents []Patent, total int, now time.Time) *PatentPayload {
	out := &PatentPayload{
		TotalPatents: total,
		Competition:  CompetitionAnalysis{Assignees: []string{}},
		Patents:      []Patent{},
	}

	horizon := now.AddDate(expiryHorizonYears, 0, 0)
	var (
		earliest  time.Time
		remaining float64
		dated     int
	)
	assignees := map[string]struct{}{}

	for i, p := range patents {
		if i < maxPatentSummaries {
			out.Patents = append(out.Patents, p)
		}
		if p.Assignee != "" {
			assignees[p.Assignee] = struct{}{}
		}
		exp, err := time.Parse(patentDateLayout, p.Expiry)
		if err != nil {
			continue
		}
		dated++
		if earliest.IsZero() || exp.Before(earliest) {
			earliest = exp
		}
		if years := exp.Sub(now).Hours() / (24 * 365.25); years > 0 {
			remaining += years
		}
		if !exp.Before(now) && exp.Before(horizon) {
			out.Expiry.ExpiringSoon++
		}
	}

	if !earliest.IsZero() {
		out.Expiry.EarliestExpiry = earliest.Format(patentDateLayout)
	}
	if dated > 0 {
		out.Expiry.AverageRemainingYears = math.Round(remaining/float64(dated)*10) / 10
	}
	for a := range assignees {
		out.Competition.Assignees = append(out.Competition.Assignees, a)
	}
	sort.Strings(out.Competition.Assignees)
	out.Competition.CompetingEntities = len(out.Competition.Assignees)
	return out
}
