package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

// recentWindowDays bounds the "recent papers" count by publication date.
const recentWindowDays = 365

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryDoc struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Article is one literature hit.
type Article struct {
	PMID    string   `json:"pmid"`
	Title   string   `json:"title"`
	Journal string   `json:"journal,omitempty"`
	PubDate string   `json:"pub_date,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

// LiteraturePayload is the literature evidence for one molecule.
type LiteraturePayload struct {
	Query        string    `json:"query"`
	PapersFound  int       `json:"papers_found"`
	RecentPapers int       `json:"recent_papers"`
	Articles     []Article `json:"articles"`
}

// LiteratureAgent queries a PubMed E-utilities style search service.
type LiteratureAgent struct {
	cfg         ProviderConfig
	wc          webclient.WebClient
	timeout     time.Duration
	maxArticles int
}

func NewLiteratureAgent(cfg ProviderConfig, wc webclient.WebClient, timeout time.Duration, maxArticles int) *LiteratureAgent {
	if maxArticles <= 0 {
		maxArticles = 10
	}
	return &LiteratureAgent{cfg: cfg, wc: wc, timeout: timeout, maxArticles: maxArticles}
}

func (a *LiteratureAgent) Name() string { return UnitLiterature }

func (a *LiteratureAgent) Fetch(ctx context.Context, q Query) (any, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	term := q.Subject
	if q.Indication != "" {
		term = fmt.Sprintf("%s AND %s", q.Subject, q.Indication)
	}

	all, err := a.search(ctx, term, a.maxArticles, false)
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	recent, err := a.search(ctx, term, 0, true)
	if err != nil {
		return nil, fmt.Errorf("esearch recent: %w", err)
	}

	out := &LiteraturePayload{Query: term, Articles: []Article{}}
	if out.PapersFound, err = strconv.Atoi(all.Result.Count); err != nil {
		return nil, fmt.Errorf("%w: esearch count %q", ErrMalformedPayload, all.Result.Count)
	}
	if out.RecentPapers, err = strconv.Atoi(recent.Result.Count); err != nil {
		return nil, fmt.Errorf("%w: esearch recent count %q", ErrMalformedPayload, recent.Result.Count)
	}

	if len(all.Result.IDList) > 0 {
		if out.Articles, err = a.summaries(ctx, all.Result.IDList); err != nil {
			return nil, fmt.Errorf("esummary: %w", err)
		}
	}
	return out, nil
}

func (a *LiteratureAgent) params(extra url.Values) url.Values {
	v := url.Values{"db": {"pubmed"}, "retmode": {"json"}}
	if a.cfg.APIKey != "" {
		v.Set("api_key", a.cfg.APIKey)
	}
	for k, vs := range extra {
		v[k] = vs
	}
	return v
}

func (a *LiteratureAgent) search(ctx context.Context, term string, retmax int, recent bool) (*esearchResponse, error) {
	extra := url.Values{"term": {term}, "retmax": {strconv.Itoa(retmax)}}
	if recent {
		extra.Set("datetype", "pdat")
		extra.Set("reldate", strconv.Itoa(recentWindowDays))
	}
	var resp esearchResponse
	if err := getJSON(ctx, a.wc, endpoint(a.cfg.BaseURL, "esearch.fcgi", a.params(extra)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *LiteratureAgent) summaries(ctx context.Context, ids []string) ([]Article, error) {
	if len(ids) > a.maxArticles {
		ids = ids[:a.maxArticles]
	}
	extra := url.Values{"id": {strings.Join(ids, ",")}}

	var resp struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := getJSON(ctx, a.wc, endpoint(a.cfg.BaseURL, "esummary.fcgi", a.params(extra)), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Article, 0, len(ids))
	for _, id := range ids {
		raw, ok := resp.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: summary %s: %v", ErrMalformedPayload, id, err)
		}
		art := Article{PMID: id, Title: doc.Title, Journal: doc.Source, PubDate: doc.PubDate}
		for _, au := range doc.Authors {
			art.Authors = append(art.Authors, au.Name)
		}
		out = append(out, art)
	}
	return out, nil
}
