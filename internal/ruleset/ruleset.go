// Package ruleset loads and validates the diagnostic rule files: the
// cluster map and the threshold registry. All structural problems are
// rejected here, before any run is scored, so the scoring engine can
// assume a well-formed rule set.
package ruleset

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/physqa/rundiag/schema"
)

// clusterMapFile mirrors the cluster map YAML document.
type clusterMapFile struct {
	Clusters map[string]clusterEntry `yaml:"clusters"`
}

// clusterEntry is one cluster body inside the cluster map.
type clusterEntry struct {
	Metrics    []string `yaml:"metrics"`
	Indicators []string `yaml:"indicators"`
}

// Load reads both rule files and assembles a validated RuleSet. The
// breakpoints argument arrives already validated by config processing.
// Clusters are normalized to name order so downstream tables have stable
// columns regardless of YAML document order.
func Load(clusterMapPath, thresholdsPath string, breakpoints schema.LabelBreakpoints) (*schema.RuleSet, error) {
	clusters, err := LoadClusterMap(clusterMapPath)
	if err != nil {
		return nil, err
	}

	thresholds, err := LoadThresholds(thresholdsPath)
	if err != nil {
		return nil, err
	}

	return &schema.RuleSet{
		Clusters:    clusters,
		Thresholds:  thresholds,
		Breakpoints: breakpoints,
	}, nil
}

// LoadClusterMap reads the cluster definition YAML into name-sorted
// cluster definitions. A cluster with no metrics and no indicators is a
// configuration mistake and rejected outright.
func LoadClusterMap(path string) ([]schema.ClusterDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cluster map: %w", err)
	}

	var doc clusterMapFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse cluster map yaml %s: %w", path, err)
	}

	if len(doc.Clusters) == 0 {
		return nil, fmt.Errorf("cluster map %s defines no clusters", path)
	}

	names := slices.Sorted(maps.Keys(doc.Clusters))
	clusters := make([]schema.ClusterDefinition, 0, len(names))
	for _, name := range names {
		entry := doc.Clusters[name]
		if err := validateClusterEntry(name, entry); err != nil {
			return nil, err
		}
		clusters = append(clusters, schema.ClusterDefinition{
			Name:       name,
			Metrics:    entry.Metrics,
			Indicators: entry.Indicators,
		})
	}
	return clusters, nil
}

// LoadThresholds reads the threshold registry YAML. The global fallback
// entry is mandatory and every entry must satisfy
// severe >= moderate >= mild >= 0 with finite bounds.
func LoadThresholds(path string) (schema.ThresholdMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds: %w", err)
	}

	var tm schema.ThresholdMap
	if err := yaml.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("parse thresholds yaml %s: %w", path, err)
	}

	if len(tm) == 0 {
		return nil, fmt.Errorf("thresholds file %s defines no entries", path)
	}
	if _, ok := tm[schema.GlobalThresholdKey]; !ok {
		return nil, fmt.Errorf("thresholds file %s is missing the mandatory %q entry", path, schema.GlobalThresholdKey)
	}

	for key, thr := range tm {
		if err := validateThreshold(key, thr); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// validateClusterEntry rejects empty clusters, blank keys and duplicate
// keys within one cluster.
func validateClusterEntry(name string, entry clusterEntry) error {
	if name == "" {
		return fmt.Errorf("cluster map contains a cluster with an empty name")
	}
	if len(entry.Metrics) == 0 && len(entry.Indicators) == 0 {
		return fmt.Errorf("cluster %q has no metrics and no indicators", name)
	}

	seen := make(map[string]struct{}, len(entry.Metrics)+len(entry.Indicators))
	for _, m := range entry.Metrics {
		if m == "" {
			return fmt.Errorf("cluster %q has an empty metric key", name)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("cluster %q lists key %q more than once", name, m)
		}
		seen[m] = struct{}{}
	}
	for _, ind := range entry.Indicators {
		if ind == "" {
			return fmt.Errorf("cluster %q has an empty indicator key", name)
		}
		if _, dup := seen[ind]; dup {
			return fmt.Errorf("cluster %q lists key %q more than once", name, ind)
		}
		seen[ind] = struct{}{}
	}
	return nil
}

// validateThreshold enforces the ordering invariant classification
// depends on. Misordered bounds would degrade silently at scoring time,
// so they are rejected up front.
func validateThreshold(key string, thr schema.Threshold) error {
	for _, bound := range []float64{thr.Mild, thr.Moderate, thr.Severe} {
		if math.IsNaN(bound) || math.IsInf(bound, 0) {
			return fmt.Errorf("threshold %q has a non-finite bound", key)
		}
	}
	if thr.Mild < 0 {
		return fmt.Errorf("threshold %q has a negative mild bound (%g)", key, thr.Mild)
	}
	if thr.Moderate < thr.Mild {
		return fmt.Errorf("threshold %q has moderate (%g) below mild (%g)", key, thr.Moderate, thr.Mild)
	}
	if thr.Severe < thr.Moderate {
		return fmt.Errorf("threshold %q has severe (%g) below moderate (%g)", key, thr.Severe, thr.Moderate)
	}
	return nil
}
