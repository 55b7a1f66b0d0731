package domain

// Occurrence is one located instance of legacy syntax.
// The JSON names match the occurrence artifact consumed by reporting tools.
type Occurrence struct {
	DocumentID      string   `json:"_id"`
	Expression      string   `json:"expression"`
	Type            SiteType `json:"type"`
	Path            string   `json:"path"`
	Service         string   `json:"service"`
	Subservice      string   `json:"subservice"`
	ExpressionIndex int      `json:"expressionIndex"`
}
