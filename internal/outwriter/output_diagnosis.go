package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/internal/ingest"
	"github.com/physqa/rundiag/internal/parquet"
	"github.com/physqa/rundiag/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeDiagnosisTables generates and writes the human-readable cause and
// symptom tables, ranked by total score and truncated to the configured
// result limit.
func writeDiagnosisTables(result *schema.DiagnosisResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	display := limitRuns(schema.RankRunsByScore(result.Runs), cfg.ResultLimit)

	if _, err := fmt.Fprintf(writer, "Cause scores by cluster:\n"); err != nil {
		return err
	}
	if err := writeCausesTable(display, result.Clusters, cfg, writer); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "\nSymptom records:\n"); err != nil {
		return err
	}
	if err := writeSymptomsTable(display, cfg, writer); err != nil {
		return err
	}

	// Compute summary stats
	summaryLine := fmt.Sprintf("Showing %d of %d runs (%d symptom records across %d clusters)",
		len(display), len(result.Runs), result.TotalSymptoms(), len(result.Clusters))
	if cfg.UseEmojis {
		summaryLine = "🩺 " + summaryLine
	}
	if _, err := fmt.Fprintln(writer, summaryLine); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Diagnosis completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeCausesTable renders one row per run with a score and label column
// pair per cluster, plus the worst label across clusters.
func writeCausesTable(runs []schema.RunDiagnosis, clusters []string, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	keyWidth := getMaxTableKeyWidth(cfg, len(clusters))

	// 1. Define Headers
	headers := []string{"Rank", "Run"}
	for _, cluster := range clusters {
		headers = append(headers, contract.TruncateKey(cluster, keyWidth), "Label")
	}
	headers = append(headers, "Worst")
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for i, diag := range runs {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			diag.Run,            // Run identifier
		}
		for _, cluster := range clusters {
			row = append(row,
				strconv.Itoa(diag.Scores[cluster]),     // Cluster score
				formatLabel(diag.Labels[cluster], cfg), // Cluster label
			)
		}
		row = append(row, formatLabel(diag.WorstLabel(), cfg)) // Worst label
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSymptomsTable renders the classified observations for the displayed runs.
func writeSymptomsTable(runs []schema.RunDiagnosis, cfg *contract.Config, writer io.Writer) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	table := tablewriter.NewWriter(writer)
	keyWidth := getMaxTableKeyWidth(cfg, 1)

	table.Header([]string{"Run", "Metric", "Z", "Severity", "Cluster"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, diag := range runs {
		for _, s := range diag.Symptoms {
			data = append(data, []string{
				diag.Run,
				contract.TruncateKey(s.Metric, keyWidth),
				fmtFloat(s.Z),
				formatSeverity(s.Severity, cfg),
				contract.TruncateKey(s.Cluster, keyWidth),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSymptomsCSV writes every symptom record in the interoperable CSV shape.
func writeSymptomsCSV(result *schema.DiagnosisResult, cfg *contract.Config) error {
	return writeWithFile(cfg.SymptomsFile, func(w io.Writer) error {
		header := []string{"run", "metric", "z", "severity", "cluster"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, diag := range result.Runs {
				for _, s := range diag.Symptoms {
					rec := []string{
						diag.Run,
						s.Metric,
						strconv.FormatFloat(s.Z, 'g', -1, 64), // Full precision
						string(s.Severity),
						s.Cluster,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}, "Wrote symptoms CSV")
}

// writeCausesCSV writes one row per run with a score and label_<cluster>
// column pair per cluster, in cluster name order.
func writeCausesCSV(result *schema.DiagnosisResult, cfg *contract.Config) error {
	return writeWithFile(cfg.CausesFile, func(w io.Writer) error {
		header := []string{"run"}
		for _, cluster := range result.Clusters {
			header = append(header, cluster, ingest.LabelColumnPrefix+cluster)
		}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, diag := range result.Runs {
				rec := []string{diag.Run}
				for _, cluster := range result.Clusters {
					rec = append(rec,
						strconv.Itoa(diag.Scores[cluster]),
						string(diag.Labels[cluster]),
					)
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote causes CSV")
}

// writeDiagnosisJSON writes the diagnosis results as a single JSON document
// with runs in rank order.
func writeDiagnosisJSON(result *schema.DiagnosisResult, _ *contract.Config) error {
	return writeWithFile("", func(w io.Writer) error {
		doc := struct {
			Runs []schema.EnrichedRunDiagnosis `json:"runs"`
		}{
			Runs: schema.EnrichRuns(schema.RankRunsByScore(result.Runs)),
		}
		return writeJSON(w, doc)
	}, "Wrote JSON")
}

// writeDiagnosisParquet writes the two result tables as Parquet files.
// Config validation guarantees both destinations are set for this mode.
func writeDiagnosisParquet(result *schema.DiagnosisResult, cfg *contract.Config) error {
	symptoms, causes := parquet.ConvertDiagnosisResult(result)

	if err := parquet.WriteSymptomsParquet(symptoms, cfg.SymptomsFile); err != nil {
		return fmt.Errorf("failed to write symptom records: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d symptom records to %s\n", len(symptoms), cfg.SymptomsFile)

	if err := parquet.WriteCausesParquet(causes, cfg.CausesFile); err != nil {
		return fmt.Errorf("failed to write cause scores: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d cause rows to %s\n", len(causes), cfg.CausesFile)

	return nil
}
