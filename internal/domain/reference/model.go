package reference

// State is a federative unit from the IBGE localities API.
type State struct {
	ID     int    `json:"id"`
	Sigla  string `json:"sigla"`
	Nome   string `json:"nome"`
	Region string `json:"region,omitempty"`
}

// City is a municipality within a state. The service prepends sentinel rows
// with negative ids to drive the dropdown placeholder.
type City struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// Sentinel city rows understood by the frontend dropdowns.
const (
	sentinelID         = -1
	placeholderCity    = "Selecione uma cidade"
	noCitiesFoundLabel = "Nenhuma cidade encontrada"
)

// fallbackNationalities keeps the nationality dropdown usable when the
// countries API is unreachable.
func fallbackNationalities() []string {
	return []string{"Brasil", "Argentina", "Chile", "Uruguai", "Paraguai"}
}
