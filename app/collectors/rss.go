package collectors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/lysyi3m/signal-comb/app/signal"
)

// RSSCollector pulls news-shaped records from an RSS or Atom feed. Items are
// keyword-filtered per the source config, and optionally enriched with the
// readable article body fetched from the item link.
type RSSCollector struct {
	config     *Config
	httpClient *http.Client
	parser     *gofeed.Parser
	extractor  *ContentExtractor
	limiter    *rate.Limiter
	userAgent  string
}

func NewRSSCollector(config *Config, httpClient *http.Client, userAgent string) *RSSCollector {
	return &RSSCollector{
		config:     config,
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		extractor:  NewContentExtractor(),
		limiter:    rate.NewLimiter(rate.Limit(config.Settings.RequestsPerSec), 1),
		userAgent:  userAgent,
	}
}

func (c *RSSCollector) Name() string {
	return c.config.Name
}

func (c *RSSCollector) Collect(ctx context.Context) ([]signal.RawRecord, error) {
	data, err := c.fetch(ctx, c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]signal.RawRecord, 0, len(parsed.Items))
	skipped := 0
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		if c.config.Settings.MaxItems > 0 && len(records) >= c.config.Settings.MaxItems {
			break
		}
		if !c.matchesFilters(item) {
			skipped++
			continue
		}
		records = append(records, c.toRecord(ctx, item))
	}

	slog.Debug("Feed collected",
		"source", c.config.Name,
		"total", len(parsed.Items),
		"filtered", skipped,
		"collected", len(records))

	return records, nil
}

func (c *RSSCollector) toRecord(ctx context.Context, item *gofeed.Item) signal.RawRecord {
	description := item.Description
	if description == "" {
		description = item.Content
	}

	if c.config.Settings.ExtractContent && item.Link != "" {
		if content, err := c.extractArticle(ctx, item.Link); err == nil {
			description = content
		} else {
			slog.Debug("Content extraction failed, keeping feed description",
				"source", c.config.Name, "url", item.Link, "error", err)
		}
	}

	record := signal.RawRecord{
		"title":       item.Title,
		"description": description,
		"url":         item.Link,
		"source":      c.sourceLabel(),
	}
	if c.config.Type != "" {
		record["signal_type"] = c.config.Type
	}
	if item.PublishedParsed != nil {
		record["publishedAt"] = item.PublishedParsed.Format(time.RFC3339)
	} else if item.Published != "" {
		record["publishedAt"] = item.Published
	}

	return record
}

func (c *RSSCollector) extractArticle(ctx context.Context, url string) (string, error) {
	data, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return c.extractor.Run(data)
}

func (c *RSSCollector) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (c *RSSCollector) sourceLabel() string {
	if c.config.Source != "" {
		return c.config.Source
	}
	return c.config.Name
}

func (c *RSSCollector) matchesFilters(item *gofeed.Item) bool {
	for _, filter := range c.config.Filters {
		value := fieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if containsFold(value, exclude) {
				return false
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if containsFold(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}

	return true
}

func containsFold(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func fieldValue(item *gofeed.Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	default:
		return ""
	}
}
