package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/variantlab/biomed-client/pkg/cbioportal"
	"github.com/variantlab/biomed-client/pkg/client"
	"github.com/variantlab/biomed-client/pkg/logging"
	"github.com/variantlab/biomed-client/pkg/oncokb"
	"github.com/variantlab/biomed-client/pkg/validation"
	"github.com/variantlab/biomed-client/pkg/variants"
)

func main() {
	// Configuration from environment
	port := getEnv("PORT", "8080")
	redisURL := os.Getenv("REDIS_URL")
	userAgent := getEnv("USER_AGENT", "biomed-client/0.1.0 (contact@variantlab.dev)")
	oncokbToken := os.Getenv("ONCOKB_TOKEN")

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo)))
	logCfg.Pretty = os.Getenv("LOG_PRETTY") == "true"
	logger := logging.Setup(logCfg)

	// Redis is optional: without it the cache runs memory-only and rate
	// limit windows stay process-local.
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")
	} else {
		logger.Info().Msg("REDIS_URL not set, running with in-memory cache only")
	}

	cfg := client.DefaultConfig(userAgent)
	cfg.Redis = redisClient
	cfg.BaseURLs[client.DomainOncoKB] = oncokb.BaseURLForToken(oncokbToken)

	apiClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}
	defer apiClient.Close()

	getter, err := variants.NewGetter(apiClient, variants.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create variant getter")
	}

	cbio, err := cbioportal.NewClient(apiClient, cbioportal.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cBioPortal client")
	}

	onco, err := oncokb.NewClient(apiClient, oncokbToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create OncoKB client")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient, apiClient))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/variants/{id}", variantHandler(getter))
	mux.HandleFunc("GET /v1/variants/{id}/annotations", annotationsHandler(getter, onco))
	mux.HandleFunc("GET /v1/genes/{symbol}/summary", geneSummaryHandler(cbio, onco))

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("user_agent", userAgent).Msg("Starting biomed proxy server")

	server := &http.Server{
		Addr:              addr,
		Handler:           withMiddleware(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness: Redis (when configured) must respond.
func readyHandler(redisClient *redis.Client, apiClient *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("Redis not ready: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// variantHandler serves the raw annotation document for one variant.
func variantHandler(getter *variants.Getter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		variant, err := getter.GetVariant(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		writeJSON(w, variant)
	}
}

// annotationsHandler serves a markdown report for one variant, with the
// OncoKB clinical section appended when the variant maps to a protein change.
func annotationsHandler(getter *variants.Getter, onco *oncokb.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		variant, err := getter.GetVariant(r.Context(), id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		report := variants.FormatVariants([]variants.Variant{*variant})
		gene := variant.Gene()
		// OncoKB expects the bare alteration, e.g. "V600E" not "p.V600E"
		change := strings.TrimPrefix(variant.ProteinChange(), "p.")
		if gene != "" && change != "" {
			report += onco.AnnotationForVariant(r.Context(), gene, change)
		}

		writeMarkdown(w, report)
	}
}

// geneSummaryHandler serves the cross-study mutation summary plus the OncoKB
// gene table. Each request carries its own validation scope so repeated gene
// checks within the request hit upstream once.
func geneSummaryHandler(cbio *cbioportal.Client, onco *oncokb.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.PathValue("symbol")
		ctx := validation.WithScope(r.Context())

		summary, err := cbio.GetGeneSearchSummary(ctx, symbol)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		if summary == nil {
			http.Error(w, fmt.Sprintf("gene %q not recognized", symbol), http.StatusNotFound)
			return
		}

		report := cbioportal.FormatSearchSummary(summary)
		report += onco.GeneSummary(ctx, []string{summary.Gene})

		writeMarkdown(w, report)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeMarkdown(w http.ResponseWriter, report string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, report)
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	if client.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
