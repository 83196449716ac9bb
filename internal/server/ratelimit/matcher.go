package ratelimit

import (
	"strings"
)

// MatchEndpoint resolves a request path and method to its rate-limit
// configuration, or nil when the endpoint is not limited. Configured paths
// ending in "/" act as prefixes, so "/runs/" covers "/runs/{id}" and its
// sub-resources.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{
			Limit:  0,
			Window: 0,
			Burst:  0,
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") {
			if strings.HasPrefix(path, config.Path) {
				return config
			}
		}
	}

	return nil
}
