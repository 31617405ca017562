// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package vladhog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/vhsecgo/pkg/cache"
)

const (
	// DefaultEndpoint serves URL checks, classification and screenshots.
	DefaultEndpoint = "https://api.vladhog.ru/security"
	// DefaultServiceEndpoint serves dynamic analysis and domain similarity.
	DefaultServiceEndpoint = "https://api.vladhog.ru/security"

	detailedSuffix   = "_detailed"
	dynamicPath      = "/dynamic_analysis/"
	similarityPath   = "/domain_similarity/"
	screenshotPath   = "/screenshot/"
	classifyLinkPath = "/classify_link"
)

// Options configures a Client. APIKey and one of CacheFile or Store are
// expected; neither is validated.
type Options struct {
	APIKey    string
	CacheFile string

	// Store overrides the FileStore built from CacheFile.
	Store cache.Store

	Endpoint        string
	ServiceEndpoint string
	HTTPClient      *http.Client
	UserAgent       string
	Logger          log.Interface

	// OnCacheError receives cache load and save failures. They are logged
	// either way and never fail a lookup.
	OnCacheError func(op string, err error)
}

// Client looks up verdicts, cache first.
type Client struct {
	apiKey          string
	endpoint        string
	serviceEndpoint string
	userAgent       string
	httpClient      *http.Client
	logger          log.Interface
	cache           *cache.Cache
}

// New builds a Client and loads its cache. A cache that cannot be loaded
// starts empty.
func New(ctx context.Context, opts Options) *Client {
	c := &Client{
		apiKey:          opts.APIKey,
		endpoint:        strings.TrimRight(opts.Endpoint, "/"),
		serviceEndpoint: strings.TrimRight(opts.ServiceEndpoint, "/"),
		userAgent:       opts.UserAgent,
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.serviceEndpoint == "" {
		c.serviceEndpoint = DefaultServiceEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = log.Log
	}

	store := opts.Store
	if store == nil {
		store = cache.NewFileStore(opts.CacheFile)
	}

	c.cache = cache.New(ctx, store,
		cache.WithLogger(c.logger),
		cache.WithErrorHandler(opts.OnCacheError),
		cache.WithClassifier(c.classify),
	)

	return c
}

// Cache returns the client's cache.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// CheckURL returns the score of url.
func (c *Client) CheckURL(ctx context.Context, url string) (float64, error) {
	var res SimpleResult
	if c.cache.Lookup(url, cache.KindSimple, &res) {
		c.logger.Debugf("cache hit: %s", url)
		return MapResultToNumber(res.Result), nil
	}

	if err := c.hit(ctx, c.queryURL("/", url), &res); err != nil {
		return ScoreUnknown, err
	}
	c.store(ctx, url, cache.KindSimple, res)

	return MapResultToNumber(res.Result), nil
}

// GetDetailedCheck returns the classification of url as the service sent it.
func (c *Client) GetDetailedCheck(ctx context.Context, url string) (*DetailedResult, error) {
	key := DetailedKey(url)

	var res DetailedResult
	if c.cache.Lookup(key, cache.KindDetailed, &res) {
		c.logger.Debugf("cache hit: %s", key)
		return &res, nil
	}

	if err := c.hit(ctx, c.queryURL(classifyLinkPath, url), &res); err != nil {
		return nil, err
	}
	c.store(ctx, key, cache.KindDetailed, res)

	return &res, nil
}

// PerformDynamicAnalysis returns the score from a dynamic analysis of url, or
// ScoreUnknown when the service did not complete the analysis.
func (c *Client) PerformDynamicAnalysis(ctx context.Context, url string) (float64, error) {
	endpoint := c.DynamicAnalysisURL(url)

	var res DynamicAnalysisResult
	if c.cache.Lookup(endpoint, cache.KindDynamic, &res) {
		c.logger.Debugf("cache hit: %s", endpoint)
		return MapResultToNumber(res.Result), nil
	}

	if err := c.hit(ctx, endpoint, &res); err != nil {
		return ScoreUnknown, err
	}
	c.store(ctx, endpoint, cache.KindDynamic, res)

	if !res.Succeeded() {
		c.logger.Debugf("dynamic analysis of %s returned %q: %s", url, res.Status(), res.Reason)
		return ScoreUnknown, nil
	}
	return MapResultToNumber(res.Result), nil
}

// CheckDomainSimilarity returns the look-alikes of domain as the service sent
// them.
func (c *Client) CheckDomainSimilarity(ctx context.Context, domain string) ([]DomainSimilarityResult, error) {
	endpoint := c.DomainSimilarityURL(domain)

	var res []DomainSimilarityResult
	if c.cache.Lookup(endpoint, cache.KindSimilarity, &res) {
		c.logger.Debugf("cache hit: %s", endpoint)
		return res, nil
	}

	if err := c.hit(ctx, endpoint, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []DomainSimilarityResult{}
	}
	c.store(ctx, endpoint, cache.KindSimilarity, res)

	return res, nil
}

// GetScreenshotURL returns where the service publishes fileName.
func (c *Client) GetScreenshotURL(fileName string) string {
	return c.endpoint + screenshotPath + fileName
}

// DynamicAnalysisURL returns the dynamic analysis endpoint for url, which is
// also its cache key.
func (c *Client) DynamicAnalysisURL(url string) string {
	return c.serviceEndpoint + dynamicPath + base64.StdEncoding.EncodeToString([]byte(url))
}

// DomainSimilarityURL returns the similarity endpoint for domain, which is
// also its cache key.
func (c *Client) DomainSimilarityURL(domain string) string {
	return c.serviceEndpoint + similarityPath + domain
}

// DetailedKey returns the cache key of a detailed check of url.
func DetailedKey(url string) string {
	return url + detailedSuffix
}

func (c *Client) store(ctx context.Context, key string, kind cache.Kind, value any) {
	c.logger.Debugf("cache miss: %s", key)
	if err := c.cache.Put(ctx, key, kind, value); err != nil {
		if errors.Is(err, cache.ErrKindConflict) {
			c.logger.WithError(err).Warn("cache entry not replaced")
			return
		}
		c.logger.WithError(err).Warnf("failed to cache %s", key)
	}
}

// classify tags entries from snapshots written without kinds, using the same
// key patterns the lookups write.
func (c *Client) classify(key string, value json.RawMessage) cache.Kind {
	switch {
	case strings.HasPrefix(key, c.serviceEndpoint+dynamicPath):
		return cache.KindDynamic
	case strings.HasPrefix(key, c.serviceEndpoint+similarityPath):
		return cache.KindSimilarity
	case strings.HasSuffix(key, detailedSuffix):
		return cache.KindDetailed
	}

	if !gjson.ParseBytes(value).IsObject() {
		return ""
	}
	return cache.KindSimple
}
