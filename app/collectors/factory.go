package collectors

import (
	"fmt"
	"net/http"
)

// New builds the collector a source config describes.
func New(config *Config, httpClient *http.Client, userAgent string) (Collector, error) {
	switch config.Kind {
	case "rss":
		return NewRSSCollector(config, httpClient, userAgent), nil
	case "file":
		return NewFileCollector(config), nil
	}
	return nil, fmt.Errorf("unknown source kind: %s", config.Kind)
}
