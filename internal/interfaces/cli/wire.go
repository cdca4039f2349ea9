package cli

import (
	"context"

	"github.com/ashishbaghudana/relna/internal/annotation"
	"github.com/ashishbaghudana/relna/internal/application/tagging"
	"github.com/ashishbaghudana/relna/internal/config"
	"github.com/ashishbaghudana/relna/internal/infrastructure/database/postgres"
	"github.com/ashishbaghudana/relna/internal/infrastructure/database/redis"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/prometheus"
	"github.com/ashishbaghudana/relna/internal/infrastructure/services"
)

// pipeline bundles everything a command needs to run tagging passes.
type pipeline struct {
	service *tagging.Service
	metrics *prometheus.TaggingMetrics
	closers []func()
}

func (p *pipeline) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// buildPipeline wires the tagger, the external-service adapters, the
// optional cache and the optional repository from configuration.
func buildPipeline(ctx context.Context, cfg *config.Config, log logging.Logger) (*pipeline, error) {
	p := &pipeline{metrics: prometheus.NewTaggingMetrics()}

	targets, err := annotation.LoadTargetTermSet(cfg.Tagger.TermListPath)
	if err != nil {
		return nil, err
	}

	gnormplus, err := services.NewGNormPlusClient(serviceConfig(&cfg.GNormPlus), log)
	if err != nil {
		return nil, err
	}
	var (
		recognizer    annotation.GeneRecognizer = gnormplus
		recognizerRes tagging.ScopedResource    = gnormplus
	)
	var (
		normalizer    annotation.IdentifierNormalizer
		ontology      annotation.OntologyResolver
		normalizerRes tagging.ScopedResource
		ontologyRes   tagging.ScopedResource
	)
	if cfg.Uniprot.BaseURL != "" {
		client, err := services.NewUniprotClient(serviceConfig(&cfg.Uniprot), log)
		if err != nil {
			return nil, err
		}
		normalizer, normalizerRes = client, client
	}
	if cfg.GOTerms.BaseURL != "" {
		client, err := services.NewGOTermsClient(serviceConfig(&cfg.GOTerms), log)
		if err != nil {
			return nil, err
		}
		ontology, ontologyRes = client, client
	}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(redisConfig(&cfg.Redis), log)
		p.closers = append(p.closers, func() { _ = rdb.Close() })
		cache := redis.NewCache(rdb, log)

		// The cached decorators stand in for their inner adapters;
		// lifecycle passes through to the wrapped client.
		cachedRec := services.NewCachedRecognizer(recognizer, cache,
			cfg.Cache.RecognitionTTL, log)
		recognizer, recognizerRes = cachedRec, cachedRec
		if normalizer != nil {
			cached := services.NewCachedNormalizer(normalizer, cache,
				cfg.Cache.NormalizationTTL, log, p.metrics)
			normalizer, normalizerRes = cached, cached
		}
		if ontology != nil {
			cached := services.NewCachedResolver(ontology, cache,
				cfg.Cache.OntologyTTL, log, p.metrics)
			ontology, ontologyRes = cached, cached
		}
	}

	resources := []tagging.ScopedResource{recognizerRes}
	if normalizerRes != nil {
		resources = append(resources, normalizerRes)
	}
	if ontologyRes != nil {
		resources = append(resources, ontologyRes)
	}

	tagger, err := annotation.NewTagger(recognizer, normalizer, ontology, targets,
		annotation.WithLogger(log),
		annotation.WithMetrics(p.metrics),
		annotation.WithConfidence(*cfg.Tagger.Confidence),
		annotation.WithRetrievalMode(annotation.MarkerRetrievalMode(cfg.Tagger.FullTextMarker)),
	)
	if err != nil {
		p.close()
		return nil, err
	}

	opts := []tagging.ServiceOption{
		tagging.WithResources(resources...),
		tagging.WithServiceLogger(log),
	}
	if cfg.Database.Enabled {
		pool, err := postgres.Connect(ctx, &cfg.Database, log)
		if err != nil {
			p.close()
			return nil, err
		}
		p.closers = append(p.closers, pool.Close)
		opts = append(opts, tagging.WithRepository(postgres.NewAnnotationRepository(pool, log)))
	}

	service, err := tagging.NewService(tagger, opts...)
	if err != nil {
		p.close()
		return nil, err
	}
	p.service = service
	return p, nil
}

func serviceConfig(c *config.ServiceConfig) *services.ServiceConfig {
	return &services.ServiceConfig{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		RetryMax:     c.RetryMax,
		RetryWaitMin: c.RetryWaitMin,
		RetryWaitMax: c.RetryWaitMax,
	}
}

func redisConfig(c *config.RedisConfig) *redis.Config {
	return &redis.Config{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		KeyPrefix:    c.KeyPrefix,
		DefaultTTL:   c.DefaultTTL,
	}
}
