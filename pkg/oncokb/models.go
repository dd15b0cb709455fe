package oncokb

// CuratedGene is one entry of the OncoKB curated gene list.
type CuratedGene struct {
	EntrezGeneID          int    `json:"entrezGeneId"`
	HugoSymbol            string `json:"hugoSymbol"`
	GeneType              string `json:"geneType"`
	Oncogene              bool   `json:"oncogene"`
	TSG                   bool   `json:"tsg"`
	HighestSensitiveLevel string `json:"highestSensitiveLevel"`
	Summary               string `json:"summary"`
}

// GeneAnnotation is the gene-level OncoKB annotation.
type GeneAnnotation struct {
	EntrezGeneID int    `json:"entrezGeneId"`
	HugoSymbol   string `json:"hugoSymbol"`
	Oncogene     bool   `json:"oncogene"`
	TSG          bool   `json:"tsg"`
	Background   string `json:"background"`
	Summary      string `json:"summary"`
}

// VariantAnnotation is the variant-level OncoKB annotation with therapeutic,
// diagnostic, and prognostic implications.
type VariantAnnotation struct {
	Query                  AnnotationQuery `json:"query"`
	Oncogenic              string          `json:"oncogenic"`
	MutationEffect         MutationEffect  `json:"mutationEffect"`
	HighestSensitiveLevel  string          `json:"highestSensitiveLevel"`
	HighestResistanceLevel string          `json:"highestResistanceLevel"`
	Treatments             []Treatment     `json:"treatments"`
	DiagnosticImplications []Implication   `json:"diagnosticImplications"`
	PrognosticImplications []Implication   `json:"prognosticImplications"`
}

// AnnotationQuery echoes the annotated gene and alteration.
type AnnotationQuery struct {
	HugoSymbol string `json:"hugoSymbol"`
	Alteration string `json:"alteration"`
}

// MutationEffect is the known biological effect of an alteration.
type MutationEffect struct {
	KnownEffect string `json:"knownEffect"`
	Description string `json:"description"`
}

// Treatment is one therapeutic implication.
type Treatment struct {
	CancerType string `json:"cancerType"`
	Level      string `json:"level"`
	Drugs      []Drug `json:"drugs"`
}

// Drug is one therapy within a treatment.
type Drug struct {
	DrugName string `json:"drugName"`
}

// Implication is a diagnostic or prognostic marker entry.
type Implication struct {
	CancerType      string `json:"cancerType"`
	LevelOfEvidence string `json:"levelOfEvidence"`
}
