// Package cbioportal summarizes gene mutation data across cBioPortal
// studies.
//
// GetGeneSearchSummary validates the gene symbol (syntactically, then against
// the cBioPortal gene registry through a scoped validation cache), selects
// the mutation profiles most relevant to the gene, and fans mutation queries
// out across them with bounded concurrency. Per-profile failures are skipped
// so a slow or broken study never sinks the whole summary.
package cbioportal
