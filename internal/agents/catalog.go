package agents

// Info describes one entry of the static agent catalog.
type Info struct {
	Name        string `json:"name" example:"Clinical Trials Agent"`
	Unit        string `json:"unit,omitempty" example:"clinical_trials"`
	Description string `json:"description" example:"Queries and analyzes clinical trial data"`
	Type        string `json:"type" example:"data_agent"`
}

const (
	TypeOrchestrator = "orchestrator"
	TypeData         = "data_agent"
	TypeOutput       = "output_agent"
)

var dataAgentInfo = map[string]Info{
	UnitMarketData:     {Name: "IQVIA Agent", Unit: UnitMarketData, Description: "Fetches market data and sales information", Type: TypeData},
	UnitClinicalTrials: {Name: "Clinical Trials Agent", Unit: UnitClinicalTrials, Description: "Queries and analyzes clinical trial data", Type: TypeData},
	UnitPatents:        {Name: "Patent Agent", Unit: UnitPatents, Description: "Analyzes patent landscape and competitive data", Type: TypeData},
	UnitLiterature:     {Name: "PubMed Agent", Unit: UnitLiterature, Description: "Mines and synthesizes pharmaceutical literature", Type: TypeData},
}

// Catalog lists the orchestrator, one entry per registered unit (in
// registration order) and, when withReport is set, the report producer.
func Catalog(units []string, withReport bool) []Info {
	out := []Info{{Name: "Master Agent", Description: "Orchestrates all worker agents", Type: TypeOrchestrator}}
	for _, u := range units {
		info, ok := dataAgentInfo[u]
		if !ok {
			info = Info{Name: u, Unit: u, Description: "Custom data agent", Type: TypeData}
		}
		out = append(out, info)
	}
	if withReport {
		out = append(out, Info{Name: "Report Agent", Description: "Generates comprehensive PDF reports", Type: TypeOutput})
	}
	return out
}
