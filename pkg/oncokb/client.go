package oncokb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/client"
	"github.com/variantlab/biomed-client/pkg/logging"
)

// OncoKB API endpoints. The demo tier serves a limited gene set without
// authentication; a token unlocks the production tier.
const (
	DemoBaseURL       = "https://demo.oncokb.org/api/v1"
	ProductionBaseURL = "https://www.oncokb.org/api/v1"
)

// Response cache lifetimes per endpoint.
const (
	curatedGenesCacheTTL = 24 * time.Hour
	annotationCacheTTL   = time.Hour
)

// BaseURLForToken returns the base URL matching the token: production when a
// token is present, demo otherwise. Wire it into the shared client's
// BaseURLs for the oncokb domain.
func BaseURLForToken(token string) string {
	if token != "" {
		return ProductionBaseURL
	}
	return DemoBaseURL
}

// Client annotates genes and variants through the OncoKB API.
type Client struct {
	api        *client.Client
	authHeader string
	logger     zerolog.Logger
}

// NewClient creates an OncoKB client on top of the shared API client. token
// may be empty for demo-tier access; a bare token is normalized to the
// "Bearer ..." form.
func NewClient(api *client.Client, token string) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}

	authHeader := ""
	if token != "" {
		if strings.HasPrefix(token, "Bearer ") {
			authHeader = token
		} else {
			authHeader = "Bearer " + token
		}
	}

	logger := logging.NewLogger("oncokb")
	if authHeader == "" {
		logger.Info().Msg("Using OncoKB demo tier (limited data); set a token for full access")
	}

	return &Client{
		api:        api,
		authHeader: authHeader,
		logger:     logger,
	}, nil
}

// options returns the per-request options for an OncoKB call.
func (c *Client) options(ttl time.Duration) []client.RequestOption {
	opts := []client.RequestOption{client.WithCacheTTL(ttl)}
	if c.authHeader != "" {
		opts = append(opts, client.WithHeader("Authorization", c.authHeader))
	}
	return opts
}

// CuratedGenes returns all genes OncoKB has curated.
func (c *Client) CuratedGenes(ctx context.Context) ([]CuratedGene, error) {
	var genes []CuratedGene
	err := c.api.GetJSON(ctx, client.DomainOncoKB, "/utils/allCuratedGenes", nil, &genes,
		c.options(curatedGenesCacheTTL)...)
	if err != nil {
		return nil, fmt.Errorf("get curated genes: %w", err)
	}
	return genes, nil
}

// GeneAnnotation returns the gene-level annotation for a HUGO symbol.
func (c *Client) GeneAnnotation(ctx context.Context, gene string) (*GeneAnnotation, error) {
	if gene == "" {
		return nil, fmt.Errorf("gene is required")
	}

	var annotation GeneAnnotation
	err := c.api.GetJSON(ctx, client.DomainOncoKB, "/genes/"+url.PathEscape(gene), nil, &annotation,
		c.options(annotationCacheTTL)...)
	if err != nil {
		return nil, fmt.Errorf("get gene annotation for %q: %w", gene, err)
	}
	return &annotation, nil
}

// VariantAnnotation returns the clinical annotation for a protein change,
// for example ("BRAF", "V600E").
func (c *Client) VariantAnnotation(ctx context.Context, gene, proteinChange string) (*VariantAnnotation, error) {
	if gene == "" || proteinChange == "" {
		return nil, fmt.Errorf("gene and protein change are required")
	}

	params := url.Values{
		"hugoSymbol": {gene},
		"alteration": {proteinChange},
	}

	var annotation VariantAnnotation
	err := c.api.GetJSON(ctx, client.DomainOncoKB, "/annotate/mutations/byProteinChange", params, &annotation,
		c.options(annotationCacheTTL)...)
	if err != nil {
		return nil, fmt.Errorf("get variant annotation for %s %s: %w", gene, proteinChange, err)
	}
	return &annotation, nil
}

// GeneSummary renders a markdown table for the requested genes from the
// curated gene list. Genes OncoKB has not curated are skipped; when nothing
// matches, or the curated list cannot be fetched, it returns "" so callers
// render without an OncoKB section.
func (c *Client) GeneSummary(ctx context.Context, genes []string) string {
	if len(genes) == 0 {
		return ""
	}

	curated, err := c.CuratedGenes(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to fetch OncoKB curated genes")
		return ""
	}

	bySymbol := make(map[string]CuratedGene, len(curated))
	for _, g := range curated {
		bySymbol[g.HugoSymbol] = g
	}

	var matched []CuratedGene
	for _, gene := range genes {
		if g, ok := bySymbol[gene]; ok {
			matched = append(matched, g)
		} else {
			c.logger.Debug().Str("gene", gene).Msg("Gene not in OncoKB curated list")
		}
	}

	if len(matched) == 0 {
		c.logger.Info().Msg("No OncoKB annotations available for genes")
		return ""
	}

	return formatGeneSummary(matched)
}

// AnnotationForVariant renders the markdown annotation section for one
// variant. Failures are absorbed into an empty result with a warn log.
func (c *Client) AnnotationForVariant(ctx context.Context, gene, proteinChange string) string {
	if gene == "" || proteinChange == "" {
		return ""
	}

	annotation, err := c.VariantAnnotation(ctx, gene, proteinChange)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("gene", gene).
			Str("protein_change", proteinChange).
			Msg("Failed to get OncoKB annotation")
		return ""
	}

	return FormatVariantAnnotation(annotation)
}
