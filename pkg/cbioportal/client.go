package cbioportal

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/variantlab/biomed-client/pkg/client"
	"github.com/variantlab/biomed-client/pkg/logging"
	"github.com/variantlab/biomed-client/pkg/validation"
)

// Response cache lifetimes per endpoint.
const (
	geneCacheTTL       = time.Hour
	profilesCacheTTL   = time.Hour
	cancerTypeCacheTTL = 24 * time.Hour
	studyCacheTTL      = time.Hour
	mutationsCacheTTL  = 15 * time.Minute
)

// Config holds cBioPortal client configuration.
type Config struct {
	// MaxStudies bounds the number of mutation profiles queried per summary.
	MaxStudies int

	// ProfileConcurrency bounds parallel per-profile mutation queries.
	ProfileConcurrency int
}

// DefaultConfig returns a default cBioPortal configuration.
func DefaultConfig() Config {
	return Config{
		MaxStudies:         10,
		ProfileConcurrency: 5,
	}
}

// Client summarizes gene mutation data from the cBioPortal API.
type Client struct {
	api       *client.Client
	validator *validation.Validator
	config    Config
	logger    zerolog.Logger
}

// NewClient creates a cBioPortal client on top of the shared API client.
func NewClient(api *client.Client, config Config) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if config.MaxStudies <= 0 {
		return nil, fmt.Errorf("max studies must be positive, got %d", config.MaxStudies)
	}
	if config.ProfileConcurrency <= 0 {
		return nil, fmt.Errorf("profile concurrency must be positive, got %d", config.ProfileConcurrency)
	}

	c := &Client{
		api:    api,
		config: config,
		logger: logging.NewLogger("cbioportal"),
	}

	validator, err := validation.NewValidator(c.lookupGene, "gene")
	if err != nil {
		return nil, fmt.Errorf("create gene validator: %w", err)
	}
	c.validator = validator

	return c, nil
}

// Validator exposes the gene validator so other packages can share its
// scoped verdicts.
func (c *Client) Validator() *validation.Validator {
	return c.validator
}

// lookupGene is the validation lookup: a gene symbol is valid when the
// cBioPortal gene registry knows it. A 404 surfaces as an error and becomes
// a negative verdict in the validator.
func (c *Client) lookupGene(ctx context.Context, query, concept string) (*validation.LookupResult, error) {
	var info geneInfo
	err := c.api.GetJSON(ctx, client.DomainCBioPortal, "/genes/"+url.PathEscape(query), nil, &info,
		client.WithCacheTTL(geneCacheTTL))
	if err != nil {
		return nil, err
	}
	if info.HugoSymbol == "" {
		return &validation.LookupResult{}, nil
	}
	return &validation.LookupResult{
		Entities: []validation.Entity{{Name: info.HugoSymbol, Concept: concept}},
	}, nil
}

// GetGeneSearchSummary aggregates mutation statistics for gene across the
// most relevant cBioPortal studies. An unknown or malformed gene symbol
// yields (nil, nil): the caller renders nothing rather than failing.
//
// Run it under a validation.WithScope context so repeated summaries within
// one operation validate each symbol at most once.
func (c *Client) GetGeneSearchSummary(ctx context.Context, gene string) (*SearchSummary, error) {
	gene = validation.SanitizeSymbol(gene)
	if !validation.IsValidSymbol(gene) {
		c.logger.Warn().Str("gene", gene).Msg("Invalid gene symbol")
		return nil, nil
	}

	if !c.validator.Valid(ctx, gene) {
		c.logger.Warn().Str("gene", gene).Msg("Gene not found in cBioPortal")
		return nil, nil
	}

	var info geneInfo
	err := c.api.GetJSON(ctx, client.DomainCBioPortal, "/genes/"+url.PathEscape(gene), nil, &info,
		client.WithCacheTTL(geneCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("get gene %q: %w", gene, err)
	}
	if info.EntrezGeneID == 0 {
		return nil, nil
	}

	profiles, err := c.relevantProfiles(ctx, gene)
	if err != nil {
		return nil, fmt.Errorf("get profiles for %q: %w", gene, err)
	}
	if len(profiles) == 0 {
		c.logger.Info().Str("gene", gene).Msg("No relevant mutation profiles")
		return nil, nil
	}

	cancerTypes := c.cancerTypes(ctx)

	selected := profiles
	if len(selected) > c.config.MaxStudies {
		selected = selected[:c.config.MaxStudies]
	}

	agg := c.mutationSummary(ctx, info.EntrezGeneID, selected, cancerTypes)

	frequency := 0.0
	if agg.totalSamples > 0 {
		frequency = float64(agg.totalMutations) / float64(agg.totalSamples)
	}

	topStudies := make([]string, 0, 5)
	for _, p := range selected {
		if p.StudyID != "" && len(topStudies) < 5 {
			topStudies = append(topStudies, p.StudyID)
		}
	}

	return &SearchSummary{
		Gene:               gene,
		TotalMutations:     agg.totalMutations,
		TotalSamplesTested: agg.totalSamples,
		MutationFrequency:  frequency,
		Hotspots:           agg.hotspots(),
		CancerDistribution: agg.cancerDistribution,
		StudyCoverage: StudyCoverage{
			TotalStudies:    len(profiles),
			QueriedStudies:  len(selected),
			StudiesWithData: agg.studiesWithData,
		},
		TopStudies: topStudies,
	}, nil
}

// relevantProfiles returns the mutation profiles whose study ids match the
// gene's cancer keywords, ordered by study priority.
func (c *Client) relevantProfiles(ctx context.Context, gene string) ([]molecularProfile, error) {
	params := url.Values{"molecularAlterationType": {"MUTATION_EXTENDED"}}

	var all []molecularProfile
	err := c.api.GetJSON(ctx, client.DomainCBioPortal, "/molecular-profiles", params, &all,
		client.WithCacheTTL(profilesCacheTTL))
	if err != nil {
		return nil, err
	}

	keywords := keywordsForGene(gene)
	var relevant []molecularProfile
	for _, profile := range all {
		studyID := strings.ToLower(profile.StudyID)
		for _, keyword := range keywords {
			if strings.Contains(studyID, keyword) {
				relevant = append(relevant, profile)
				break
			}
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return studyPriority(relevant[i].StudyID) < studyPriority(relevant[j].StudyID)
	})

	return relevant, nil
}

// cancerTypes returns the cancer type id to name lookup. Failures degrade to
// an empty map; distribution entries then fall back to study-id inference.
func (c *Client) cancerTypes(ctx context.Context) map[string]string {
	var types []cancerTypeInfo
	err := c.api.GetJSON(ctx, client.DomainCBioPortal, "/cancer-types", nil, &types,
		client.WithCacheTTL(cancerTypeCacheTTL))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get cancer types")
		return map[string]string{}
	}

	byID := make(map[string]string, len(types))
	for _, ct := range types {
		if ct.CancerTypeID != "" {
			byID[ct.CancerTypeID] = ct.Name
		}
	}
	return byID
}

// profileAggregate collects mutation statistics across profiles. Guarded by
// its own mutex because profile queries run concurrently.
type profileAggregate struct {
	mu                 sync.Mutex
	totalMutations     int
	totalSamples       int
	studiesWithData    int
	hotspotCounts      map[string]int
	hotspotCancerTypes map[string]map[string]bool
	cancerDistribution map[string]int
}

// mutationSummary queries each selected profile with bounded concurrency and
// aggregates the results. Per-profile failures are logged and skipped.
func (c *Client) mutationSummary(ctx context.Context, geneID int, profiles []molecularProfile, cancerTypes map[string]string) *profileAggregate {
	agg := &profileAggregate{
		hotspotCounts:      make(map[string]int),
		hotspotCancerTypes: make(map[string]map[string]bool),
		cancerDistribution: make(map[string]int),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.ProfileConcurrency)

	for _, profile := range profiles {
		g.Go(func() error {
			mutations, sampleCount, err := c.profileMutations(gctx, geneID, profile)
			if err != nil {
				c.logger.Debug().
					Err(err).
					Str("profile", profile.MolecularProfileID).
					Msg("Profile mutation query failed, skipping")
				return nil
			}
			if len(mutations) == 0 {
				return nil
			}

			cancerType := c.studyCancerType(gctx, profile.StudyID, cancerTypes)

			agg.mu.Lock()
			defer agg.mu.Unlock()
			agg.totalMutations += len(mutations)
			agg.totalSamples += sampleCount
			agg.studiesWithData++
			agg.cancerDistribution[cancerType] += len(mutations)
			for _, m := range mutations {
				if m.ProteinChange == "" {
					continue
				}
				agg.hotspotCounts[m.ProteinChange]++
				if agg.hotspotCancerTypes[m.ProteinChange] == nil {
					agg.hotspotCancerTypes[m.ProteinChange] = make(map[string]bool)
				}
				agg.hotspotCancerTypes[m.ProteinChange][cancerType] = true
			}
			return nil
		})
	}

	// Workers swallow their errors, Wait only drains them.
	_ = g.Wait()
	return agg
}

// profileMutations fetches the mutations for one profile together with the
// study's sample count.
func (c *Client) profileMutations(ctx context.Context, geneID int, profile molecularProfile) ([]mutation, int, error) {
	var samples []sampleInfo
	err := c.api.GetJSON(ctx, client.DomainCBioPortal,
		"/studies/"+url.PathEscape(profile.StudyID)+"/samples",
		url.Values{"projection": {"SUMMARY"}}, &samples,
		client.WithCacheTTL(studyCacheTTL))
	if err != nil {
		return nil, 0, err
	}

	params := url.Values{
		"sampleListId": {profile.StudyID + "_all"},
		"geneIdType":   {"ENTREZ_GENE_ID"},
		"geneIds":      {strconv.Itoa(geneID)},
		"projection":   {"SUMMARY"},
	}

	var mutations []mutation
	err = c.api.GetJSON(ctx, client.DomainCBioPortal,
		"/molecular-profiles/"+url.PathEscape(profile.MolecularProfileID)+"/mutations",
		params, &mutations,
		client.WithCacheTTL(mutationsCacheTTL))
	if err != nil {
		return nil, 0, err
	}

	return mutations, len(samples), nil
}

// studyCancerType resolves a study's cancer type name, falling back to
// study-id inference when the metadata is missing.
func (c *Client) studyCancerType(ctx context.Context, studyID string, cancerTypes map[string]string) string {
	var study studyInfo
	err := c.api.GetJSON(ctx, client.DomainCBioPortal, "/studies/"+url.PathEscape(studyID), nil, &study,
		client.WithCacheTTL(studyCacheTTL))
	if err == nil {
		if name, ok := cancerTypes[study.CancerTypeID]; ok && name != "" {
			return name
		}
		if study.CancerType != nil && study.CancerType.Name != "" {
			return study.CancerType.Name
		}
	} else {
		c.logger.Debug().Err(err).Str("study", studyID).Msg("Failed to get study cancer type")
	}

	return cancerTypeFromStudyID(studyID)
}

// hotspots converts the aggregated counts into the top recurrent changes.
func (a *profileAggregate) hotspots() []Hotspot {
	a.mu.Lock()
	defer a.mu.Unlock()

	hotspots := make([]Hotspot, 0, len(a.hotspotCounts))
	for change, count := range a.hotspotCounts {
		frequency := 0.0
		if a.totalMutations > 0 {
			frequency = float64(count) / float64(a.totalMutations)
		}

		var types []string
		for ct := range a.hotspotCancerTypes[change] {
			types = append(types, ct)
		}
		sort.Strings(types)

		hotspots = append(hotspots, Hotspot{
			AminoAcidChange: change,
			Count:           count,
			Frequency:       frequency,
			CancerTypes:     types,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Count != hotspots[j].Count {
			return hotspots[i].Count > hotspots[j].Count
		}
		return hotspots[i].AminoAcidChange < hotspots[j].AminoAcidChange
	})

	if len(hotspots) > 5 {
		hotspots = hotspots[:5]
	}
	return hotspots
}
