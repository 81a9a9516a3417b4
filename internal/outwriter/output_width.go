package outwriter

import (
	"os"

	"github.com/physqa/rundiag/internal/contract"
	"golang.org/x/term"
)

// getMaxTableKeyWidth calculates the maximum width for metric and cluster
// names in table output based on terminal width and the number of cluster
// column pairs.
func getMaxTableKeyWidth(cfg *contract.Config, clusters int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 20 // Rank + Run with borders/padding

	// Each cluster contributes a score cell and a label cell
	baseWidth += clusters * 12

	// Worst-label column with formatting
	baseWidth += 12

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 10

	// Calculate available space for key names
	available := termWidth - baseWidth
	if available < 12 {
		// Minimum reasonable key width
		return 12
	}
	if available > 40 {
		// Maximum key width to prevent overly long names
		return 40
	}
	return available
}
