package pricing

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegions []byte

// RegionTable maps region codes (e.g. 'us-east-1') to the location
// names the catalog uses to identify them.
type RegionTable struct {
	Version int               `yaml:"version"`
	Regions map[string]string `yaml:"regions"`
}

// DefaultRegionTable returns the region table embedded in the binary.
func DefaultRegionTable() *RegionTable {
	table, err := parseRegionTable(defaultRegions)
	if err != nil {
		panic(fmt.Sprintf("embedded region table is invalid: %s", err))
	}

	return table
}

// LoadRegionTable reads a region table from the YAML file at the path
// provided. An empty path selects the embedded table.
func LoadRegionTable(path string) (*RegionTable, error) {
	if path == "" {
		return DefaultRegionTable(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region table %s: %w", path, err)
	}

	return parseRegionTable(raw)
}

func parseRegionTable(raw []byte) (*RegionTable, error) {
	var table RegionTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to decode region table: %w", err)
	}

	if len(table.Regions) == 0 {
		return nil, fmt.Errorf("region table (version %d) defines no regions", table.Version)
	}

	return &table, nil
}

func (table *RegionTable) Location(regionCode string) (string, error) {
	location, ok := table.Regions[regionCode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, regionCode)
	}

	return location, nil
}

// Codes returns all known region codes, sorted.
func (table *RegionTable) Codes() []string {
	codes := make([]string, 0, len(table.Regions))
	for code := range table.Regions {
		codes = append(codes, code)
	}

	slices.Sort(codes)
	return codes
}
