package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Payments News</title>
<link>https://example.com</link>
<item>
  <title>Stripe raises $600M Series H</title>
  <link>https://example.com/stripe-series-h</link>
  <description>Stripe closed a new funding round.</description>
  <pubDate>Wed, 15 Oct 2025 09:00:00 GMT</pubDate>
</item>
<item>
  <title>Sponsored: crypto wallet roundup</title>
  <link>https://example.com/sponsored</link>
  <description>Paid placement.</description>
  <pubDate>Wed, 15 Oct 2025 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Adyen quarterly report</title>
  <link>https://example.com/adyen</link>
  <description>Results are in.</description>
  <pubDate>Thu, 16 Oct 2025 08:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func testRSSConfig(url string) *Config {
	return &Config{
		Name:   "payments-news",
		Kind:   "rss",
		URL:    url,
		Source: "Payments News",
		Type:   "news",
		Settings: ConfigSettings{
			Enabled:        true,
			MaxItems:       100,
			Timeout:        5,
			RequestsPerSec: 100,
		},
	}
}

func TestRSSCollectorCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Test Agent" {
			t.Errorf("Expected user agent 'Test Agent', got '%s'", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	collector := NewRSSCollector(testRSSConfig(server.URL), server.Client(), "Test Agent")

	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first["title"] != "Stripe raises $600M Series H" {
		t.Errorf("Unexpected title: %v", first["title"])
	}
	if first["source"] != "Payments News" {
		t.Errorf("Expected source 'Payments News', got %v", first["source"])
	}
	if first["signal_type"] != "news" {
		t.Errorf("Expected signal_type 'news', got %v", first["signal_type"])
	}
	if first["url"] != "https://example.com/stripe-series-h" {
		t.Errorf("Unexpected url: %v", first["url"])
	}
	if first["publishedAt"] != "2025-10-15T09:00:00Z" {
		t.Errorf("Unexpected publishedAt: %v", first["publishedAt"])
	}
}

func TestRSSCollectorAppliesFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	config := testRSSConfig(server.URL)
	config.Filters = []ConfigFilter{
		{Field: "title", Includes: []string{"stripe", "adyen"}, Excludes: []string{"sponsored"}},
	}

	collector := NewRSSCollector(config, server.Client(), "Test Agent")

	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records after filtering, got %d", len(records))
	}
	for _, rec := range records {
		title, _ := rec["title"].(string)
		if title == "Sponsored: crypto wallet roundup" {
			t.Error("Excluded item survived filtering")
		}
	}
}

func TestRSSCollectorHonorsMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	config := testRSSConfig(server.URL)
	config.Settings.MaxItems = 1

	collector := NewRSSCollector(config, server.Client(), "Test Agent")

	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record with max_items 1, got %d", len(records))
	}
}

func TestRSSCollectorHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	collector := NewRSSCollector(testRSSConfig(server.URL), server.Client(), "Test Agent")

	if _, err := collector.Collect(context.Background()); err == nil {
		t.Error("Expected an error for a 503 response")
	}
}

func TestRSSCollectorInvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	collector := NewRSSCollector(testRSSConfig(server.URL), server.Client(), "Test Agent")

	if _, err := collector.Collect(context.Background()); err == nil {
		t.Error("Expected an error for unparseable feed data")
	}
}
