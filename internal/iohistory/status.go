package iohistory

import (
	"fmt"
	"maps"
	"slices"

	"github.com/physqa/rundiag/schema"
)

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(status schema.HistoryStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Diagnoses: %d\n", status.TotalDiagnoses)
	if status.TotalDiagnoses > 0 {
		fmt.Printf("Last Diagnosis ID: %d\n", status.LastDiagnosisID)
		fmt.Printf("Last Diagnosis: %s\n", status.LastDiagnosisTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Diagnosis: %s\n", status.OldestDiagnosisTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Runs Diagnosed: %d\n", status.TotalRunsDiagnosed)
	}
	fmt.Println("Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
