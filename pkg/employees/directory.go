// Package employees provides a read-only employee directory loaded from a
// YAML file. The directory supplies role, division, and restriction data to
// compliance checks when a request carries only an employee ID.
package employees

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"mercator-hq/themis/pkg/rules"
)

// Record is one employee entry in the directory file.
type Record struct {
	ID                string            `yaml:"id"`
	Name              string            `yaml:"name"`
	Role              string            `yaml:"role"`
	Division          string            `yaml:"division"`
	Firm              string            `yaml:"firm"`
	CoveredTickers    []string          `yaml:"covered_tickers"`
	RestrictedTickers []string          `yaml:"restricted_tickers"`
	QuickReference    map[string]string `yaml:"quick_reference"`
}

// directoryFile is the YAML document shape.
type directoryFile struct {
	Employees []Record `yaml:"employees"`
}

// Directory is an in-memory employee lookup.
type Directory struct {
	mu      sync.RWMutex
	records map[string]Record
	logger  *slog.Logger
}

// Load reads the directory from a YAML file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read employee directory: %w", err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse employee directory: %w", err)
	}

	d := &Directory{
		records: make(map[string]Record, len(file.Employees)),
		logger:  slog.Default().With("component", "employees"),
	}
	for _, record := range file.Employees {
		if record.ID == "" {
			return nil, fmt.Errorf("employee directory entry missing id")
		}
		d.records[record.ID] = record
	}

	d.logger.Info("employee directory loaded",
		"path", path,
		"employees", len(d.records),
	)
	return d, nil
}

// Empty returns a directory with no entries, for deployments that pass
// full employee objects with every request.
func Empty() *Directory {
	return &Directory{
		records: map[string]Record{},
		logger:  slog.Default().With("component", "employees"),
	}
}

// Lookup returns the employee as a compliance query subject, or a
// NotFoundError for an unknown ID.
func (d *Directory) Lookup(id string) (*rules.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	record, ok := d.records[id]
	if !ok {
		return nil, &rules.NotFoundError{Kind: "employee", Key: id}
	}

	return &rules.Employee{
		ID:                record.ID,
		Role:              record.Role,
		Division:          record.Division,
		Firm:              record.Firm,
		CoveredTickers:    record.CoveredTickers,
		RestrictedTickers: record.RestrictedTickers,
		QuickReference:    record.QuickReference,
	}, nil
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}
