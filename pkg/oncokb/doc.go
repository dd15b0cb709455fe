// Package oncokb annotates genes and variants with curated precision
// oncology knowledge from OncoKB.
//
// Without an API token the client uses the demo tier, which serves a limited
// gene set; a token switches the base URL to the production endpoint and is
// sent as a bearer header on every request. Formatting helpers render the
// annotations as the markdown sections the proxy appends to variant and gene
// reports; all OncoKB failures degrade to empty output so a report renders
// without its OncoKB section rather than failing.
package oncokb
