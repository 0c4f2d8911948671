package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/lysyi3m/signal-comb/app/signal"
)

// FileCollector reads raw records from a JSON dump on disk. Dumps come in
// three shapes: a bare array of records, an object with an "all_signals"
// array, or a single record object.
type FileCollector struct {
	config *Config
}

func NewFileCollector(config *Config) *FileCollector {
	return &FileCollector{config: config}
}

func (c *FileCollector) Name() string {
	return c.config.Name
}

func (c *FileCollector) Collect(ctx context.Context) ([]signal.RawRecord, error) {
	data, err := os.ReadFile(c.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dump %s: %w", c.config.Path, err)
	}

	// Stamp the configured source and type on records that carry neither.
	for _, rec := range records {
		if _, ok := rec["source"]; !ok && c.config.Source != "" {
			rec["source"] = c.config.Source
		}
		if _, ok := rec["signal_type"]; !ok && c.config.Type != "" {
			rec["signal_type"] = c.config.Type
		}
	}

	slog.Debug("Dump collected", "source", c.config.Name, "records", len(records))

	return records, nil
}

func decodeRecords(data []byte) ([]signal.RawRecord, error) {
	var list []signal.RawRecord
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("dump is neither an array nor an object")
	}

	if raw, ok := wrapper["all_signals"]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("invalid all_signals array: %w", err)
		}
		return list, nil
	}

	var single signal.RawRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []signal.RawRecord{single}, nil
}
