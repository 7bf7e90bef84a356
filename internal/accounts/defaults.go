package accounts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
)

//go:embed chart-of-accounts.txt
var defaultChart []byte

// DefaultChartText returns the built-in chart of accounts file.
func DefaultChartText() []byte {
	return bytes.Clone(defaultChart)
}

// DefaultChart parses the built-in chart of accounts.
func DefaultChart(rules TypeRules) ([]ChartNode, error) {
	return LoadChartWithRules(bytes.NewReader(defaultChart), rules)
}

// LoadChartFile parses a chart file, or the built-in chart when path is
// empty.
func LoadChartFile(path string, rules TypeRules) ([]ChartNode, error) {
	if path == "" {
		return DefaultChart(rules)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	nodes, err := LoadChartWithRules(f, rules)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts %s: %w", path, err)
	}
	return nodes, nil
}
