// Package variants retrieves and annotates genetic variants from
// MyVariant.info.
//
// The package offers three access paths:
//
//   - Getter.GetVariant fetches one variant document by HGVS identifier or
//     dbSNP rsID.
//   - Getter.Annotate resolves one variant through a shared request batcher:
//     concurrent callers are coalesced into a single POST to the batch
//     endpoint and each caller receives its positional result.
//   - Getter.SearchVariants runs a query-string search and fans the result
//     pages out over a worker pool, returning partial data when individual
//     pages fail.
//
// Responses are cached through the shared client with per-endpoint TTLs.
package variants
