package oncokb

import (
	"fmt"
	"strings"
)

// maxEffectDescription truncates long mutation effect descriptions.
const maxEffectDescription = 200

// FormatVariantAnnotation renders a variant annotation as markdown:
// oncogenicity, mutation effect, evidence levels, the top treatments, and
// diagnostic/prognostic counts. A nil annotation renders as "".
func FormatVariantAnnotation(annotation *VariantAnnotation) string {
	if annotation == nil {
		return ""
	}

	var b strings.Builder

	gene := annotation.Query.HugoSymbol
	if gene == "" {
		gene = "Unknown"
	}
	alteration := annotation.Query.Alteration
	if alteration == "" {
		alteration = "Unknown"
	}
	fmt.Fprintf(&b, "\n### OncoKB Annotation: %s %s\n", gene, alteration)

	if annotation.Oncogenic != "" {
		fmt.Fprintf(&b, "- **Oncogenicity**: %s\n", annotation.Oncogenic)
	}

	if annotation.MutationEffect.KnownEffect != "" {
		fmt.Fprintf(&b, "- **Mutation Effect**: %s\n", annotation.MutationEffect.KnownEffect)
		if description := annotation.MutationEffect.Description; description != "" {
			if len(description) > maxEffectDescription {
				description = description[:maxEffectDescription-3] + "..."
			}
			fmt.Fprintf(&b, "  - %s\n", description)
		}
	}

	if annotation.HighestSensitiveLevel != "" {
		fmt.Fprintf(&b, "- **Highest Sensitivity Level**: %s\n", annotation.HighestSensitiveLevel)
	}
	if annotation.HighestResistanceLevel != "" {
		fmt.Fprintf(&b, "- **Highest Resistance Level**: %s\n", annotation.HighestResistanceLevel)
	}

	if len(annotation.Treatments) > 0 {
		b.WriteString("\n**Therapeutic Implications:**\n")
		for i, treatment := range annotation.Treatments {
			if i == 3 {
				break
			}
			var names []string
			for _, drug := range treatment.Drugs {
				if drug.DrugName != "" {
					names = append(names, drug.DrugName)
				}
			}
			if len(names) == 0 {
				continue
			}
			cancerType := treatment.CancerType
			if cancerType == "" {
				cancerType = "Unknown"
			}
			fmt.Fprintf(&b, "- %s: %s (Level %s)\n", cancerType, strings.Join(names, ", "), treatment.Level)
		}
	}

	if n := len(annotation.DiagnosticImplications); n > 0 {
		fmt.Fprintf(&b, "\n**Diagnostic Implications**: %d cancer type(s)\n", n)
	}
	if n := len(annotation.PrognosticImplications); n > 0 {
		fmt.Fprintf(&b, "**Prognostic Implications**: %d cancer type(s)\n", n)
	}

	return b.String()
}

// formatGeneSummary renders curated gene records as a markdown table.
func formatGeneSummary(genes []CuratedGene) string {
	var b strings.Builder
	b.WriteString("\n### OncoKB Gene Summary\n")
	b.WriteString("| Gene | Type | Highest Level | Clinical Implications |\n")
	b.WriteString("|------|------|---------------|----------------------|\n")

	for _, gene := range genes {
		geneType := "-"
		if gene.GeneType != "" {
			geneType = titleCase(gene.GeneType)
		}

		level := gene.HighestSensitiveLevel
		if level == "" {
			level = "-"
		}

		clinical := "No summary available"
		if gene.Summary != "" {
			// First sentence, truncated
			first, _, _ := strings.Cut(gene.Summary, ". ")
			if len(first) > 80 {
				first = first[:77] + "..."
			}
			clinical = first
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", gene.HugoSymbol, geneType, level, clinical)
	}

	return b.String()
}

// titleCase converts "ONCOGENE" to "Oncogene".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
