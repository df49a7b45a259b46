package router

import (
	"net/http"
	"path"
	"strings"

	"offline-gateway/internal/config"
	"offline-gateway/internal/models"
)

// Strategy identifies the read/write ordering policy applied to a request.
type Strategy string

const (
	StrategyCacheFirst           Strategy = "cache-first"
	StrategyNetworkFirst         Strategy = "network-first"
	StrategyStaleWhileRevalidate Strategy = "stale-while-revalidate"
)

// Rule pairs a request predicate with the strategy and namespace role it
// selects. Rules are evaluated in order and the first match wins, so a
// request can only ever land in one bucket.
type Rule struct {
	Name      string
	Match     func(*http.Request) bool
	Strategy  Strategy
	Namespace string // models.NamespaceStatic or models.NamespaceDynamic

	// HTMLFallback enables the extra network-first fallback to the cached
	// root document for HTML navigations.
	HTMLFallback bool
}

// DefaultRules builds the classification table:
//  1. API prefix            → network-first, dynamic namespace
//  2. static file extension → cache-first, static namespace
//  3. Accept includes HTML  → network-first (root fallback), dynamic namespace
//  4. everything else       → stale-while-revalidate, dynamic namespace
func DefaultRules(cfg *config.RouterConfig) []Rule {
	apiPrefix := cfg.APIPrefix

	extensions := make(map[string]struct{}, len(cfg.StaticExtensions))
	for _, ext := range cfg.StaticExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	return []Rule{
		{
			Name: "api",
			Match: func(req *http.Request) bool {
				return strings.HasPrefix(req.URL.Path, apiPrefix)
			},
			Strategy:  StrategyNetworkFirst,
			Namespace: models.NamespaceDynamic,
		},
		{
			Name: "static-asset",
			Match: func(req *http.Request) bool {
				ext := strings.ToLower(path.Ext(req.URL.Path))
				if ext == "" {
					return false
				}
				_, ok := extensions[ext]
				return ok
			},
			Strategy:  StrategyCacheFirst,
			Namespace: models.NamespaceStatic,
		},
		{
			Name: "html-navigation",
			Match: func(req *http.Request) bool {
				return strings.Contains(req.Header.Get("Accept"), "text/html")
			},
			Strategy:     StrategyNetworkFirst,
			Namespace:    models.NamespaceDynamic,
			HTMLFallback: true,
		},
		{
			Name:      "default",
			Match:     func(*http.Request) bool { return true },
			Strategy:  StrategyStaleWhileRevalidate,
			Namespace: models.NamespaceDynamic,
		},
	}
}

// Classify returns the first rule matching the request.
func Classify(rules []Rule, req *http.Request) Rule {
	for _, rule := range rules {
		if rule.Match(req) {
			return rule
		}
	}
	// DefaultRules always ends with a catch-all; an empty table classifies
	// everything as stale-while-revalidate.
	return Rule{
		Name:      "default",
		Strategy:  StrategyStaleWhileRevalidate,
		Namespace: models.NamespaceDynamic,
	}
}
