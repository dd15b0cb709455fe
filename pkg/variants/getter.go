package variants

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/batcher"
	"github.com/variantlab/biomed-client/pkg/client"
	"github.com/variantlab/biomed-client/pkg/logging"
)

// Supported genome assemblies.
const (
	AssemblyHg19 = "hg19"
	AssemblyHg38 = "hg38"
)

// Response cache lifetimes per endpoint.
const (
	variantCacheTTL = 15 * time.Minute
	queryCacheTTL   = 15 * time.Minute
)

// Config holds getter configuration.
type Config struct {
	// Assembly is the genome assembly used for all lookups (hg19 or hg38).
	Assembly string

	// Batch configures the annotation request batcher.
	Batch batcher.Config

	// Fetcher configures the search page worker pool.
	Fetcher FetcherConfig
}

// DefaultConfig returns a default getter configuration.
func DefaultConfig() Config {
	return Config{
		Assembly: AssemblyHg19,
		Batch: batcher.Config{
			BatchSize:    10,
			BatchTimeout: 50 * time.Millisecond,
		},
		Fetcher: DefaultFetcherConfig(),
	}
}

// Getter retrieves variant annotations from MyVariant.info.
type Getter struct {
	api    *client.Client
	config Config
	batch  *batcher.Batcher[string, Variant]
	pages  *PagedFetcher
	logger zerolog.Logger
}

// NewGetter creates a Getter on top of the shared API client.
func NewGetter(api *client.Client, config Config) (*Getter, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if config.Assembly != AssemblyHg19 && config.Assembly != AssemblyHg38 {
		return nil, fmt.Errorf("unsupported assembly %q", config.Assembly)
	}

	g := &Getter{
		api:    api,
		config: config,
		logger: logging.NewLogger("variants"),
	}

	b, err := batcher.New(g.annotateBatch, config.Batch)
	if err != nil {
		return nil, fmt.Errorf("create annotation batcher: %w", err)
	}
	g.batch = b
	g.pages = NewPagedFetcher(g, config.Fetcher)

	return g, nil
}

// GetVariant fetches one variant document by identifier. The identifier can
// be an HGVS-style string ("chr7:g.140453136A>T") or a dbSNP rsID
// ("rs113488022"). Identifiers that map to multiple documents resolve to the
// first hit.
func (g *Getter) GetVariant(ctx context.Context, id string) (*Variant, error) {
	if id == "" {
		return nil, fmt.Errorf("variant id is required")
	}

	params := url.Values{
		"fields":   {"all"},
		"assembly": {g.config.Assembly},
	}

	var raw json.RawMessage
	err := g.api.GetJSON(ctx, client.DomainMyVariant, "/variant/"+url.PathEscape(id), params, &raw,
		client.WithCacheTTL(variantCacheTTL))
	if err != nil {
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("variant %q not found in MyVariant.info; "+
				"verify the identifier (e.g. rs113488022 or chr7:g.140453136A>T): %w", id, err)
		}
		return nil, fmt.Errorf("get variant %q: %w", id, err)
	}

	variant, err := decodeVariantDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode variant %q: %w", id, err)
	}
	return variant, nil
}

// Annotate resolves one variant through the shared annotation batcher.
// Concurrent callers are coalesced into a single batch POST; each caller
// receives the document at its own position in the response.
func (g *Getter) Annotate(ctx context.Context, id string) (*Variant, error) {
	if id == "" {
		return nil, fmt.Errorf("variant id is required")
	}

	variant, err := g.batch.Do(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("annotate variant %q: %w", id, err)
	}
	if variant.NotFound {
		return nil, fmt.Errorf("variant %q has no annotation in MyVariant.info", id)
	}
	return &variant, nil
}

// annotateBatch is the batcher's downstream call: one POST for all coalesced
// identifiers. MyVariant answers positionally, one document per submitted id,
// marking unknown identifiers with notfound instead of omitting them.
func (g *Getter) annotateBatch(ctx context.Context, ids []string) ([]Variant, error) {
	body := map[string]any{
		"ids":      ids,
		"fields":   "all",
		"assembly": g.config.Assembly,
	}

	var docs []Variant
	if err := g.api.PostJSON(ctx, client.DomainMyVariant, "/variant", body, &docs); err != nil {
		return nil, fmt.Errorf("batch annotate %d variants: %w", len(ids), err)
	}

	g.logger.Debug().
		Int("requested", len(ids)).
		Int("returned", len(docs)).
		Msg("Annotation batch resolved")

	return docs, nil
}

// SearchVariants runs a MyVariant query-string search ("dbnsfp.genename:BRAF
// AND clinvar.rcv.clinical_significance:pathogenic") and returns up to
// maxResults hits. Pages beyond the first are fetched concurrently; failed
// pages are skipped and reported alongside the partial result.
func (g *Getter) SearchVariants(ctx context.Context, query string, maxResults int) ([]Variant, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	return g.pages.FetchAll(ctx, query, maxResults)
}

// queryResponse is the wire shape of GET /query.
type queryResponse struct {
	Total int       `json:"total"`
	Hits  []Variant `json:"hits"`
}

// FetchPage implements PageFetcher over GET /query with offset paging.
func (g *Getter) FetchPage(ctx context.Context, query string, offset, limit int) ([]Variant, int, error) {
	params := url.Values{
		"q":        {query},
		"fields":   {"all"},
		"assembly": {g.config.Assembly},
		"from":     {strconv.Itoa(offset)},
		"size":     {strconv.Itoa(limit)},
	}

	var resp queryResponse
	err := g.api.GetJSON(ctx, client.DomainMyVariant, "/query", params, &resp,
		client.WithCacheTTL(queryCacheTTL))
	if err != nil {
		return nil, 0, fmt.Errorf("query page at offset %d: %w", offset, err)
	}
	return resp.Hits, resp.Total, nil
}

// decodeVariantDocument parses a GET /variant response, which is a single
// document for unambiguous identifiers and an array when one id maps to
// several documents.
func decodeVariantDocument(raw json.RawMessage) (*Variant, error) {
	var variant Variant
	if err := json.Unmarshal(raw, &variant); err == nil {
		return &variant, nil
	}

	var docs []Variant
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty variant response")
	}
	return &docs[0], nil
}
