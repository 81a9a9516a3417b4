package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCohortSummary writes the cohort frequency artifacts and renders the
// summary in the configured output format. The CSV and markdown artifacts
// are the contract of the summary command and are produced for every mode.
func WriteCohortSummary(summary schema.CohortSummary, cfg *contract.Config, duration time.Duration) error {
	if err := writeSummaryCSV(summary, cfg); err != nil {
		return fmt.Errorf("error writing summary CSV: %w", err)
	}
	if err := writeSummaryReport(summary, cfg); err != nil {
		return fmt.Errorf("error writing summary report: %w", err)
	}

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile("", func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut, schema.ParquetOut:
		// The artifacts above already carry the tabular data
		return nil
	default:
		return writeWithFile("", func(w io.Writer) error {
			return writeSummaryTables(summary, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeSummaryCSV writes the per-metric severity frequency table.
func writeSummaryCSV(summary schema.CohortSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.SummaryFile, func(w io.Writer) error {
		header := []string{"metric", "severe", "moderate", "mild", "normal"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, m := range summary.Metrics {
				rec := []string{
					m.Metric,
					strconv.Itoa(m.Counts[schema.SeveritySevere]),
					strconv.Itoa(m.Counts[schema.SeverityModerate]),
					strconv.Itoa(m.Counts[schema.SeverityMild]),
					strconv.Itoa(m.Counts[schema.SeverityNormal]),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote summary CSV")
}

// writeSummaryReport writes the markdown cohort report. The bullet and
// heading shapes are relied on by downstream tooling, so they stay fixed.
func writeSummaryReport(summary schema.CohortSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.ReportFile, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "# Cohort Diagnosis Summary\n\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "## Per-metric symptom frequencies\n"); err != nil {
			return err
		}
		for _, m := range summary.Metrics {
			if _, err := fmt.Fprintf(w, "- %s: severe=%d, moderate=%d, mild=%d, normal=%d\n",
				m.Metric,
				m.Counts[schema.SeveritySevere],
				m.Counts[schema.SeverityModerate],
				m.Counts[schema.SeverityMild],
				m.Counts[schema.SeverityNormal]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n## Per-cluster cause labels (run counts)\n"); err != nil {
			return err
		}
		for _, c := range summary.Clusters {
			if _, err := fmt.Fprintf(w, "- %s: strong=%d, moderate=%d, weak=%d, none=%d\n",
				c.Cluster,
				c.Counts[schema.LabelStrong],
				c.Counts[schema.LabelModerate],
				c.Counts[schema.LabelWeak],
				c.Counts[schema.LabelNone]); err != nil {
				return err
			}
		}
		return nil
	}, "Wrote report")
}

// writeSummaryTables renders the two frequency tables for terminal display.
func writeSummaryTables(summary schema.CohortSummary, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "Per-metric symptom frequencies:\n"); err != nil {
		return err
	}
	if err := writeMetricFrequencyTable(summary.Metrics, cfg, writer); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "\nPer-cluster cause labels:\n"); err != nil {
		return err
	}
	if err := writeClusterLabelTable(summary.Clusters, cfg, writer); err != nil {
		return err
	}

	summaryLine := fmt.Sprintf("Summarized %d runs across %d metrics and %d clusters",
		summary.TotalRuns, len(summary.Metrics), len(summary.Clusters))
	if cfg.UseEmojis {
		summaryLine = "🩺 " + summaryLine
	}
	if _, err := fmt.Fprintln(writer, summaryLine); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Summary completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeMetricFrequencyTable renders distinct-run severity counts per metric.
func writeMetricFrequencyTable(metrics []schema.MetricSeverityCount, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	keyWidth := getMaxTableKeyWidth(cfg, 1)

	table.Header([]string{"Metric", "Severe", "Moderate", "Mild", "Normal"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range metrics {
		data = append(data, []string{
			contract.TruncateKey(m.Metric, keyWidth),
			strconv.Itoa(m.Counts[schema.SeveritySevere]),
			strconv.Itoa(m.Counts[schema.SeverityModerate]),
			strconv.Itoa(m.Counts[schema.SeverityMild]),
			strconv.Itoa(m.Counts[schema.SeverityNormal]),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeClusterLabelTable renders distinct-run label counts per cluster.
func writeClusterLabelTable(clusters []schema.ClusterLabelCount, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	keyWidth := getMaxTableKeyWidth(cfg, 1)

	table.Header([]string{"Cluster", "Strong", "Moderate", "Weak", "None"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range clusters {
		data = append(data, []string{
			contract.TruncateKey(c.Cluster, keyWidth),
			strconv.Itoa(c.Counts[schema.LabelStrong]),
			strconv.Itoa(c.Counts[schema.LabelModerate]),
			strconv.Itoa(c.Counts[schema.LabelWeak]),
			strconv.Itoa(c.Counts[schema.LabelNone]),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
