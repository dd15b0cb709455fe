package cbioportal

import (
	"fmt"
	"sort"
	"strings"
)

// FormatSearchSummary renders a gene summary as markdown. A nil summary
// renders as the empty string so callers can append it unconditionally.
func FormatSearchSummary(summary *SearchSummary) string {
	if summary == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n### cBioPortal Summary for %s\n", summary.Gene)
	fmt.Fprintf(&b, "- **Mutation Frequency**: %.1f%% (%d mutations in %d samples)\n",
		summary.MutationFrequency*100, summary.TotalMutations, summary.TotalSamplesTested)
	fmt.Fprintf(&b, "- **Studies**: %d of %d studies have mutations\n",
		summary.StudyCoverage.StudiesWithData, summary.StudyCoverage.QueriedStudies)

	if len(summary.Hotspots) > 0 {
		b.WriteString("\n**Top Hotspots:**\n")
		for i, hs := range summary.Hotspots {
			if i == 3 {
				break
			}
			types := hs.CancerTypes
			if len(types) > 3 {
				types = types[:3]
			}
			fmt.Fprintf(&b, "- %s: %d cases (%.1f%%) in %s\n",
				hs.AminoAcidChange, hs.Count, hs.Frequency*100, strings.Join(types, ", "))
		}
	}

	if len(summary.CancerDistribution) > 0 {
		b.WriteString("\n**Cancer Type Distribution:**\n")
		type entry struct {
			name  string
			count int
		}
		entries := make([]entry, 0, len(summary.CancerDistribution))
		for name, count := range summary.CancerDistribution {
			entries = append(entries, entry{name, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].name < entries[j].name
		})
		for i, e := range entries {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %d mutations\n", e.name, e.count)
		}
	}

	return b.String()
}
