package demoprov

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Server fakes the four upstream data providers on one listener:
//
//	/iqvia/{market-size,sales-trends,competitors}  market analytics (bearer auth)
//	/ctgov/api/v2/studies                          clinical trial registry
//	/patents/search                                patent search results page (bearer auth)
//	/eutils/{esearch,esummary}.fcgi                literature index
//
// Each provider can be switched to failing at runtime from /demo/control.
type Server struct {
	cfg  Config
	now  func() time.Time
	mux  *http.ServeMux
	mu   sync.RWMutex
	fail map[string]bool
	hits map[string]int
}

// NewServer creates a new demo provider server.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		cfg:  cfg,
		now:  cfg.Now,
		fail: make(map[string]bool),
		hits: make(map[string]int),
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, p := range cfg.Fail {
		if !isProvider(p) {
			return nil, fmt.Errorf("demoprov: unknown provider %q", p)
		}
		s.fail[p] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /iqvia/market-size", s.provider(ProviderMarket, true, s.marketSizeHandler))
	mux.HandleFunc("GET /iqvia/sales-trends", s.provider(ProviderMarket, true, s.salesTrendsHandler))
	mux.HandleFunc("GET /iqvia/competitors", s.provider(ProviderMarket, true, s.competitorsHandler))
	mux.HandleFunc("GET /ctgov/api/v2/studies", s.provider(ProviderTrials, false, s.studiesHandler))
	mux.HandleFunc("GET /patents/search", s.provider(ProviderPatents, true, s.patentSearchHandler))
	mux.HandleFunc("GET /eutils/esearch.fcgi", s.provider(ProviderLiterature, false, s.esearchHandler))
	mux.HandleFunc("GET /eutils/esummary.fcgi", s.provider(ProviderLiterature, false, s.esummaryHandler))

	// Control panel for failure switches
	mux.HandleFunc("GET /demo/control", s.controlPanelHandler)
	mux.HandleFunc("GET /demo/state", s.stateHandler)
	mux.HandleFunc("POST /demo/fail", s.setFailHandler)
	mux.HandleFunc("POST /demo/reset", s.resetHandler)
	s.mux = mux
	return s, nil
}

// Handler exposes the routes, for mounting under httptest.
func (s *Server) Handler() http.Handler { return s.mux }

// Start starts the demo provider server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo providers starting on http://localhost%s\n", addr)
	fmt.Printf("Control panel at http://localhost%s/demo/control\n", addr)
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	return srv.ListenAndServe()
}

// SetFailing flips a provider's failure switch.
func (s *Server) SetFailing(provider string, failing bool) error {
	if !isProvider(provider) {
		return fmt.Errorf("demoprov: unknown provider %q", provider)
	}
	s.mu.Lock()
	s.fail[provider] = failing
	s.mu.Unlock()
	return nil
}

// Hits returns how many requests each provider has answered.
func (s *Server) Hits() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.hits))
	for k, v := range s.hits {
		out[k] = v
	}
	return out
}

func isProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// provider wraps a handler with the shared latency, auth and failure logic.
func (s *Server) provider(name string, auth bool, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[name]++
		failing := s.fail[name]
		s.mu.Unlock()

		if s.cfg.Latency > 0 {
			select {
			case <-time.After(s.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			http.Error(w, name+" is unavailable", http.StatusServiceUnavailable)
			return
		}
		if auth && s.cfg.APIKey != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.APIKey {
			http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func required(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		http.Error(w, "missing "+key, http.StatusBadRequest)
		return "", false
	}
	return v, true
}

func intParam(r *http.Request, key string, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ─── Market analytics ───────────────────────────────────────────────────

func (s *Server) marketSizeHandler(w http.ResponseWriter, r *http.Request) {
	drug, ok := required(w, r, "drug")
	if !ok {
		return
	}
	writeJSON(w, genMarketSize(drug, s.now()))
}

func (s *Server) salesTrendsHandler(w http.ResponseWriter, r *http.Request) {
	drug, ok := required(w, r, "drug")
	if !ok {
		return
	}
	writeJSON(w, genSalesTrends(drug, s.now()))
}

func (s *Server) competitorsHandler(w http.ResponseWriter, r *http.Request) {
	indication, ok := required(w, r, "indication")
	if !ok {
		return
	}
	writeJSON(w, genCompetitors(indication))
}

// ─── Clinical trial registry ────────────────────────────────────────────

func (s *Server) studiesHandler(w http.ResponseWriter, r *http.Request) {
	intr, ok := required(w, r, "query.intr")
	if !ok {
		return
	}
	q := r.URL.Query()
	studies := genStudies(intr, q.Get("query.cond"))

	if status := q.Get("filter.overallStatus"); status != "" {
		want := map[string]bool{}
		for _, st := range strings.Split(status, ",") {
			want[strings.ToUpper(strings.TrimSpace(st))] = true
		}
		kept := studies[:0]
		for _, st := range studies {
			if want[st.Status] {
				kept = append(kept, st)
			}
		}
		studies = kept
	}

	type protocol struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		DesignModule struct {
			Phases         []string `json:"phases"`
			EnrollmentInfo struct {
				Count int `json:"count"`
			} `json:"enrollmentInfo"`
		} `json:"designModule"`
	}
	type item struct {
		ProtocolSection protocol `json:"protocolSection"`
	}

	page := studies
	if size := intParam(r, "pageSize", 10, 1000); size < len(page) {
		page = page[:size]
	}
	resp := struct {
		TotalCount *int   `json:"totalCount,omitempty"`
		Studies    []item `json:"studies"`
	}{Studies: make([]item, 0, len(page))}
	if q.Get("countTotal") == "true" {
		n := len(studies)
		resp.TotalCount = &n
	}
	for _, st := range page {
		var it item
		it.ProtocolSection.IdentificationModule.NCTID = st.NCTID
		it.ProtocolSection.IdentificationModule.BriefTitle = st.Title
		it.ProtocolSection.StatusModule.OverallStatus = st.Status
		it.ProtocolSection.DesignModule.Phases = st.Phases
		it.ProtocolSection.DesignModule.EnrollmentInfo.Count = st.Enrollment
		resp.Studies = append(resp.Studies, it)
	}
	writeJSON(w, resp)
}

// ─── Patent search ──────────────────────────────────────────────────────

var patentPage = template.Must(template.New("patents").Parse(`<!DOCTYPE html>
<html>
<head><title>Patent search: {{.Query}}</title></head>
<body>
    <h1>Results for "{{.Query}}"</h1>
    <div id="results" data-total="{{.Total}}">
        <table class="patents">
            <tr><th>Number</th><th>Title</th><th>Assignee</th><th>Expiry</th></tr>
            {{range .Patents}}
            <tr class="patent">
                <td class="number">{{.Number}}</td>
                <td class="title">{{.Title}}</td>
                <td class="assignee">{{.Assignee}}</td>
                <td class="expiry">{{.Expiry}}</td>
            </tr>
            {{end}}
        </table>
    </div>
</body>
</html>`))

func (s *Server) patentSearchHandler(w http.ResponseWriter, r *http.Request) {
	query, ok := required(w, r, "q")
	if !ok {
		return
	}
	all := genPatents(query, s.now())
	page := all
	if rows := intParam(r, "rows", 20, 500); rows < len(page) {
		page = page[:rows]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = patentPage.Execute(w, struct {
		Query   string
		Total   int
		Patents []patent
	}{query, len(all), page})
}

// ─── Literature index ───────────────────────────────────────────────────

// matchArticles applies the reldate window the way the index does.
func (s *Server) matchArticles(r *http.Request, term string) []article {
	now := s.now()
	arts := genArticles(term, now)
	q := r.URL.Query()
	if q.Get("datetype") != "pdat" || q.Get("reldate") == "" {
		return arts
	}
	days, err := strconv.Atoi(q.Get("reldate"))
	if err != nil || days <= 0 {
		return arts
	}
	cutoff := now.AddDate(0, 0, -days)
	n := 0
	for n < len(arts) && !arts[n].PubDate.Before(cutoff) {
		n++
	}
	return arts[:n]
}

func (s *Server) esearchHandler(w http.ResponseWriter, r *http.Request) {
	term, ok := required(w, r, "term")
	if !ok {
		return
	}
	arts := s.matchArticles(r, term)
	retmax := intParam(r, "retmax", 20, 10000)

	ids := make([]string, 0, retmax)
	for i := 0; i < len(arts) && i < retmax; i++ {
		ids = append(ids, arts[i].PMID)
	}

	type result struct {
		Count  string   `json:"count"`
		RetMax string   `json:"retmax"`
		IDList []string `json:"idlist"`
	}
	writeJSON(w, map[string]result{
		"esearchresult": {
			Count:  strconv.Itoa(len(arts)),
			RetMax: strconv.Itoa(len(ids)),
			IDList: ids,
		},
	})
}

// esummaryHandler synthesizes each summary from its PMID alone.
func (s *Server) esummaryHandler(w http.ResponseWriter, r *http.Request) {
	raw, ok := required(w, r, "id")
	if !ok {
		return
	}
	ids := strings.Split(raw, ",")

	type author struct {
		Name string `json:"name"`
	}
	type summary struct {
		UID     string   `json:"uid"`
		Title   string   `json:"title"`
		Source  string   `json:"source"`
		PubDate string   `json:"pubdate"`
		Authors []author `json:"authors"`
	}

	result := map[string]any{"uids": ids}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		a := genSummary(id, s.now())
		sum := summary{
			UID:     id,
			Title:   a.Title,
			Source:  a.Journal,
			PubDate: a.PubDate.Format("2006 Jan 2"),
			Authors: make([]author, 0, len(a.Authors)),
		}
		for _, name := range a.Authors {
			sum.Authors = append(sum.Authors, author{Name: name})
		}
		result[id] = sum
	}
	writeJSON(w, map[string]any{"result": result})
}

// ─── Control panel ──────────────────────────────────────────────────────

type providerState struct {
	Provider string `json:"provider"`
	Failing  bool   `json:"failing"`
	Hits     int    `json:"hits"`
}

func (s *Server) states() []providerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]providerState, 0, len(Providers))
	for _, p := range Providers {
		out = append(out, providerState{Provider: p, Failing: s.fail[p], Hits: s.hits[p]})
	}
	return out
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.states())
}

// setFailHandler flips one provider's failure switch.
func (s *Server) setFailHandler(w http.ResponseWriter, r *http.Request) {
	provider := r.FormValue("provider")
	failing, err := strconv.ParseBool(r.FormValue("failing"))
	if err != nil {
		http.Error(w, "Invalid failing flag", http.StatusBadRequest)
		return
	}
	if err := s.SetFailing(provider, failing); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"success":  true,
		"provider": provider,
		"failing":  failing,
	})
}

// resetHandler clears every failure switch and hit counter.
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.fail = make(map[string]bool)
	s.hits = make(map[string]int)
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"message": "All providers healthy",
	})
}

var controlPanel = template.Must(template.New("control").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Demo Providers Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        .card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); display: flex; justify-content: space-between; align-items: center; }
        .name { font-size: 1.2em; font-weight: bold; color: #007bff; }
        .ok { color: #28a745; font-weight: bold; }
        .down { color: #dc3545; font-weight: bold; }
        button { padding: 8px 16px; border: none; border-radius: 4px; cursor: pointer; font-size: 14px; }
        .reset-btn { background: #dc3545; color: white; }
    </style>
</head>
<body>
    <h1>Demo Providers Control Panel</h1>
    <p>Switch providers to failing to watch partial findings flow through a discovery run.</p>
    <button class="reset-btn" onclick="post('/demo/reset', '')">Reset all</button>
    {{range .}}
    <div class="card">
        <span class="name">{{.Provider}}</span>
        <span>{{.Hits}} requests</span>
        {{if .Failing}}<span class="down">failing</span>{{else}}<span class="ok">healthy</span>{{end}}
        <button onclick="post('/demo/fail', 'provider={{.Provider}}&failing={{if .Failing}}false{{else}}true{{end}}')">
            {{if .Failing}}Recover{{else}}Break{{end}}
        </button>
    </div>
    {{end}}
    <script>
        function post(path, body) {
            fetch(path, {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: body
            }).then(() => location.reload());
        }
    </script>
</body>
</html>`))

// controlPanelHandler serves the control panel for the failure switches.
func (s *Server) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_ = controlPanel.Execute(w, s.states())
}
