package variants

import (
	"fmt"
	"strings"
)

// FormatVariants renders variant documents as markdown, one section per
// variant with the key annotation fields as a bullet list.
func FormatVariants(variants []Variant) string {
	if len(variants) == 0 {
		return "No variants found.\n"
	}

	var b strings.Builder
	for i := range variants {
		b.WriteString(formatVariant(&variants[i]))
	}
	return b.String()
}

func formatVariant(v *Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", v.ID)

	if v.NotFound {
		b.WriteString("- No annotation found\n\n")
		return b.String()
	}

	if gene := v.Gene(); gene != "" {
		fmt.Fprintf(&b, "- **Gene**: %s\n", gene)
	}
	if rsid := v.RSID(); rsid != "" {
		fmt.Fprintf(&b, "- **dbSNP**: %s\n", rsid)
	}
	if change := v.ProteinChange(); change != "" {
		fmt.Fprintf(&b, "- **Protein Change**: %s\n", change)
	}
	if sig := v.ClinicalSignificance(); sig != "" {
		fmt.Fprintf(&b, "- **ClinVar Significance**: %s\n", sig)
	}
	if af, ok := v.GnomadAF(); ok {
		fmt.Fprintf(&b, "- **gnomAD AF**: %.6f\n", af)
	}
	if phred, ok := v.CADDPhred(); ok {
		fmt.Fprintf(&b, "- **CADD Phred**: %.1f\n", phred)
	}

	b.WriteString("\n")
	return b.String()
}
