package agents

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

const maxTrialSummaries = 10

type ctgovResponse struct {
	TotalCount int `json:"totalCount"`
	Studies    []struct {
		ProtocolSection struct {
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
		} `json:"protocolSection"`
	} `json:"studies"`
}

// TrialSummary is one study in the trials payload.
type TrialSummary struct {
	NCTID      string   `json:"nct_id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Phases     []string `json:"phases,omitempty"`
	Enrollment int      `json:"enrollment"`
}

// TrialsPayload summarizes a registry search.
type TrialsPayload struct {
	Drug            string         `json:"drug"`
	Indication      string         `json:"indication,omitempty"`
	ActiveTrials    int            `json:"active_trials"`
	Recruiting      int            `json:"recruiting"`
	Phases          []string       `json:"phases"`
	EnrollmentTotal int            `json:"enrollment_total"`
	Trials          []TrialSummary `json:"trials"`
}

// ClinicalTrialsAgent searches a ClinicalTrials.gov v2 style registry.
type ClinicalTrialsAgent struct {
	cfg      ProviderConfig
	wc       webclient.WebClient
	timeout  time.Duration
	pageSize int
}

func NewClinicalTrialsAgent(cfg ProviderConfig, wc webclient.WebClient, timeout time.Duration, pageSize int) *ClinicalTrialsAgent {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &ClinicalTrialsAgent{cfg: cfg, wc: wc, timeout: timeout, pageSize: pageSize}
}

func (a *ClinicalTrialsAgent) Name() string { return UnitClinicalTrials }

func (a *ClinicalTrialsAgent) Fetch(ctx context.Context, q Query) (any, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	params := url.Values{
		"query.intr": {q.Subject},
		"format":     {"json"},
		"countTotal": {"true"},
		"pageSize":   {strconv.Itoa(a.pageSize)},
	}
	if q.Indication != "" {
		params.Set("query.cond", q.Indication)
	}
	// Registry-native filters ("filter.overallStatus", ...) pass through.
	for k, v := range q.Filters {
		if strings.HasPrefix(k, "filter.") {
			params.Set(k, v)
		}
	}

	var resp ctgovResponse
	if err := getJSON(ctx, a.wc, endpoint(a.cfg.BaseURL, "studies", params), bearer(a.cfg.APIKey), &resp); err != nil {
		return nil, err
	}
	return summarizeTrials(q, &resp), nil
}

func summarizeTrials(q Query, resp *ctgovResponse) *TrialsPayload {
	out := &TrialsPayload{
		Drug:         q.Subject,
		Indication:   q.Indication,
		ActiveTrials: resp.TotalCount,
		Phases:       []string{},
		Trials:       []TrialSummary{},
	}
	if out.ActiveTrials == 0 {
		out.ActiveTrials = len(resp.Studies)
	}

	phases := map[string]struct{}{}
	for _, s := range resp.Studies {
		ps := s.ProtocolSection
		if strings.EqualFold(ps.StatusModule.OverallStatus, "RECRUITING") {
			out.Recruiting++
		}
		for _, p := range ps.DesignModule.Phases {
			phases[p] = struct{}{}
		}
		out.EnrollmentTotal += ps.DesignModule.EnrollmentInfo.Count

		if len(out.Trials) < maxTrialSummaries {
			out.Trials = append(out.Trials, TrialSummary{
				NCTID:      ps.IdentificationModule.NCTID,
				Title:      ps.IdentificationModule.BriefTitle,
				Status:     ps.StatusModule.OverallStatus,
				Phases:     ps.DesignModule.Phases,
				Enrollment: ps.DesignModule.EnrollmentInfo.Count,
			})
		}
	}
	for p := range phases {
		out.Phases = append(out.Phases, p)
	}
	sort.Strings(out.Phases)
	return out
}
