package cbioportal

// Hotspot is a recurrently mutated protein position.
type Hotspot struct {
	AminoAcidChange string
	Count           int
	Frequency       float64
	CancerTypes     []string
}

// StudyCoverage reports how much of the available study universe a summary
// actually queried.
type StudyCoverage struct {
	TotalStudies    int
	QueriedStudies  int
	StudiesWithData int
}

// SearchSummary aggregates mutation statistics for one gene across the
// queried cBioPortal studies.
type SearchSummary struct {
	Gene               string
	TotalMutations     int
	TotalSamplesTested int
	MutationFrequency  float64
	Hotspots           []Hotspot
	CancerDistribution map[string]int
	StudyCoverage      StudyCoverage
	TopStudies         []string
}

// Wire shapes of the cBioPortal REST API.

type geneInfo struct {
	EntrezGeneID int    `json:"entrezGeneId"`
	HugoSymbol   string `json:"hugoGeneSymbol"`
}

type molecularProfile struct {
	MolecularProfileID string `json:"molecularProfileId"`
	StudyID            string `json:"studyId"`
}

type cancerTypeInfo struct {
	CancerTypeID string `json:"cancerTypeId"`
	Name         string `json:"name"`
}

type studyInfo struct {
	StudyID      string          `json:"studyId"`
	CancerTypeID string          `json:"cancerTypeId"`
	CancerType   *cancerTypeInfo `json:"cancerType,omitempty"`
}

type sampleInfo struct {
	SampleID string `json:"sampleId"`
}

type mutation struct {
	ProteinChange   string `json:"proteinChange"`
	ProteinPosStart int    `json:"proteinPosStart"`
}
