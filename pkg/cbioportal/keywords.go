package cbioportal

import "strings"

// geneKeywords maps well-known cancer genes to study-id fragments where they
// are most informative. Genes without an entry fall back to the pan-cancer
// studies alone.
var geneKeywords = map[string][]string{
	"BRAF":  {"skcm", "melanoma", "thca", "thyroid", "coadread", "colorectal"},
	"KRAS":  {"coadread", "colorectal", "paad", "pancreatic", "luad", "lung"},
	"EGFR":  {"luad", "lusc", "lung", "gbm", "glioma"},
	"TP53":  {"brca", "breast", "ov", "lusc", "hnsc", "coadread"},
	"BRCA1": {"brca", "breast", "ov", "ovarian"},
	"BRCA2": {"brca", "breast", "ov", "ovarian", "prad", "prostate"},
	"PTEN":  {"prad", "prostate", "gbm", "ucec", "endometrial"},
	"ALK":   {"luad", "lung", "nbl", "neuroblastoma"},
	"KIT":   {"gist", "skcm", "melanoma"},
	"PIK3CA": {"brca", "breast", "hnsc", "coadread"},
}

// panCancerKeywords match the large multi-cancer cohorts and are always
// included.
var panCancerKeywords = []string{"msk_impact", "tcga", "genie", "metabric"}

// priorityStudies orders profile selection: the large curated cohorts first.
var priorityStudies = []string{"msk_impact", "tcga", "genie", "metabric", "broad"}

// keywordsForGene returns the study-id fragments to match for gene.
func keywordsForGene(gene string) []string {
	keywords := append([]string{}, panCancerKeywords...)
	if specific, ok := geneKeywords[gene]; ok {
		keywords = append(keywords, specific...)
	}
	return keywords
}

// studyPriority ranks a study id against priorityStudies; unknown studies
// sort last.
func studyPriority(studyID string) int {
	id := strings.ToLower(studyID)
	for i, priority := range priorityStudies {
		if strings.Contains(id, priority) {
			return i
		}
	}
	return len(priorityStudies)
}

// cancerTypeFromStudyID infers a cancer type name from study-id fragments.
// Used when the study metadata carries no usable cancer type.
func cancerTypeFromStudyID(studyID string) string {
	id := strings.ToLower(studyID)
	switch {
	case strings.Contains(id, "brca") || strings.Contains(id, "breast"):
		return "Breast Cancer"
	case strings.Contains(id, "lung") || strings.Contains(id, "nsclc") ||
		strings.Contains(id, "luad") || strings.Contains(id, "lusc"):
		return "Lung Cancer"
	case strings.Contains(id, "coad") || strings.Contains(id, "colorectal"):
		return "Colorectal Cancer"
	case strings.Contains(id, "skcm") || strings.Contains(id, "melanoma"):
		return "Melanoma"
	case strings.Contains(id, "prad") || strings.Contains(id, "prostate"):
		return "Prostate Cancer"
	default:
		return "Unknown"
	}
}
