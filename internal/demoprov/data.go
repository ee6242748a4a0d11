package demoprov

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
)

// Datasets are synthesized from the query so the same molecule always gets
// the same numbers.

var (
	companies = []string{
		"Pfizer Inc.", "Novartis AG", "Roche Holding AG", "Merck & Co.",
		"AstraZeneca PLC", "Sanofi S.A.", "Bristol-Myers Squibb", "Eli Lilly and Company",
		"GSK plc", "Takeda Pharmaceutical", "Teva Pharmaceutical", "Viatris Inc.",
	}
	trialStatuses = []string{"RECRUITING", "ACTIVE_NOT_RECRUITING", "COMPLETED", "NOT_YET_RECRUITING", "ENROLLING_BY_INVITATION"}
	trialPhases   = []string{"EARLY_PHASE1", "PHASE1", "PHASE2", "PHASE3", "PHASE4"}
	journals      = []string{
		"N Engl J Med", "Lancet", "JAMA", "BMJ", "Nat Med",
		"J Clin Oncol", "Circulation", "Diabetes Care", "Ann Intern Med",
	}
	surnames = []string{"Smith", "Chen", "Garcia", "Müller", "Patel", "Kim", "Rossi", "Nguyen", "Okafor", "Larsen"}
)

func rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		_, _ = h.Write([]byte{0})
	}
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

type marketSize struct {
	Drug              string  `json:"drug"`
	Year              int     `json:"year"`
	MarketSizeUSDMn   float64 `json:"market_size_usd_millions"`
	CAGRPercent       float64 `json:"cagr_percent"`
	PatientPopulation int     `json:"patient_population"`
}

func genMarketSize(drug string, now time.Time) marketSize {
	r := rng("market-size", drug)
	return marketSize{
		Drug:              drug,
		Year:              now.Year() - 1,
		MarketSizeUSDMn:   round1(200 + r.Float64()*9800),
		CAGRPercent:       round1(-2 + r.Float64()*14),
		PatientPopulation: 50_000 + r.IntN(5_000_000),
	}
}

type quarterSales struct {
	Quarter         string  `json:"quarter"`
	SalesUSDMn      float64 `json:"sales_usd_millions"`
	GrowthPercent   float64 `json:"growth_percent"`
	PrescriptionsMn float64 `json:"prescriptions_millions"`
}

type salesTrends struct {
	Drug     string         `json:"drug"`
	Quarters []quarterSales `json:"quarters"`
}

func genSalesTrends(drug string, now time.Time) salesTrends {
	r := rng("sales-trends", drug)
	out := salesTrends{Drug: drug, Quarters: make([]quarterSales, 0, 8)}

	sales := 50 + r.Float64()*950
	year, q := now.Year()-2, 1
	for i := 0; i < 8; i++ {
		growth := -5 + r.Float64()*15
		sales *= 1 + growth/100
		out.Quarters = append(out.Quarters, quarterSales{
			Quarter:         fmt.Sprintf("%d-Q%d", year, q),
			SalesUSDMn:      round1(sales),
			GrowthPercent:   round1(growth),
			PrescriptionsMn: round1(sales / (20 + r.Float64()*80)),
		})
		if q++; q > 4 {
			year, q = year+1, 1
		}
	}
	return out
}

type competitor struct {
	Company      string  `json:"company"`
	Product      string  `json:"product"`
	SharePercent float64 `json:"share_percent"`
}

type competitors struct {
	Indication  string       `json:"indication"`
	Competitors []competitor `json:"competitors"`
}

func genCompetitors(indication string) competitors {
	r := rng("competitors", indication)
	n := 3 + r.IntN(4)
	picked := r.Perm(len(companies))[:n]

	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = 1 + r.Float64()*9
		sum += weights[i]
	}

	out := competitors{Indication: indication, Competitors: make([]competitor, 0, n)}
	for i, idx := range picked {
		out.Competitors = append(out.Competitors, competitor{
			Company:      companies[idx],
			Product:      fmt.Sprintf("%s-%03d", strings.ToUpper(companies[idx][:3]), r.IntN(1000)),
			SharePercent: round1(weights[i] / sum * 100),
		})
	}
	return out
}

type study struct {
	NCTID      string
	Title      string
	Status     string
	Phases     []string
	Enrollment int
}

// genStudies returns the full result set for a ctgov search.
func genStudies(intervention, condition string) []study {
	r := rng("ctgov", intervention, condition)
	n := 5 + r.IntN(60)
	subject := intervention
	if condition != "" {
		subject = intervention + " in " + condition
	}

	out := make([]study, 0, n)
	for i := 0; i < n; i++ {
		phase := trialPhases[r.IntN(len(trialPhases))]
		phases := []string{phase}
		if phase == "PHASE2" && r.IntN(4) == 0 {
			phases = []string{"PHASE2", "PHASE3"}
		}
		out = append(out, study{
			NCTID:      fmt.Sprintf("NCT%08d", 1_000_000+r.IntN(6_000_000)),
			Title:      fmt.Sprintf("A %s Study of %s (%s-%d)", strings.ToLower(strings.ReplaceAll(phases[0], "_", " ")), subject, strings.ToUpper(firstWord(intervention)), i+1),
			Status:     trialStatuses[r.IntN(len(trialStatuses))],
			Phases:     phases,
			Enrollment: 20 + r.IntN(3000),
		})
	}
	return out
}

type patent struct {
	Number   string
	Title    string
	Assignee string
	Expiry   string
}

func genPatents(query string, now time.Time) []patent {
	r := rng("patents", query)
	n := 2 + r.IntN(25)

	out := make([]patent, 0, n)
	for i := 0; i < n; i++ {
		// Expiries spread from two years ago to fifteen years out.
		exp := now.AddDate(-2, 0, r.IntN(17*365))
		out = append(out, patent{
			Number:   fmt.Sprintf("US%d%s", 7_000_000+r.IntN(5_000_000), []string{"B1", "B2", "A1"}[r.IntN(3)]),
			Title:    fmt.Sprintf("%s of %s", []string{"Formulation", "Method of treatment", "Crystalline form", "Process for preparation", "Combination therapy"}[r.IntN(5)], query),
			Assignee: companies[r.IntN(len(companies))],
			Expiry:   exp.Format("2006-01-02"),
		})
	}
	return out
}

type article struct {
	PMID    string
	Title   string
	Journal string
	PubDate time.Time
	Authors []string
}

// genArticles returns every article matching term, newest first.
func genArticles(term string, now time.Time) []article {
	r := rng("pubmed", term)
	n := 10 + r.IntN(400)

	out := make([]article, 0, n)
	for i := 0; i < n; i++ {
		authors := make([]string, 1+r.IntN(5))
		for j := range authors {
			authors[j] = fmt.Sprintf("%s %c", surnames[r.IntN(len(surnames))], 'A'+rune(r.IntN(26)))
		}
		// Roughly one in five articles falls inside the last year.
		out = append(out, article{
			PMID:    fmt.Sprintf("%d", 30_000_000+r.IntN(9_000_000)),
			Title:   fmt.Sprintf("%s: %s", []string{"Efficacy and safety", "Real-world outcomes", "Pharmacokinetics", "A systematic review", "Long-term follow-up"}[r.IntN(5)], term),
			Journal: journals[r.IntN(len(journals))],
			PubDate: now.AddDate(0, 0, -r.IntN(5*365)),
			Authors: authors,
		})
	}
	sortArticles(out)
	return out
}

// genSummary builds the document summary for one PMID.
func genSummary(pmid string, now time.Time) article {
	r := rng("esummary", pmid)
	authors := make([]string, 1+r.IntN(5))
	for j := range authors {
		authors[j] = fmt.Sprintf("%s %c", surnames[r.IntN(len(surnames))], 'A'+rune(r.IntN(26)))
	}
	return article{
		PMID:    pmid,
		Title:   fmt.Sprintf("%s in a cohort of %d patients", []string{"Efficacy and safety", "Real-world outcomes", "Pharmacokinetics", "Comparative effectiveness", "Long-term follow-up"}[r.IntN(5)], 40+r.IntN(4000)),
		Journal: journals[r.IntN(len(journals))],
		PubDate: now.AddDate(0, 0, -r.IntN(5*365)),
		Authors: authors,
	}
}

func sortArticles(arts []article) {
	sort.SliceStable(arts, func(i, j int) bool { return arts[i].PubDate.After(arts[j].PubDate) })
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
