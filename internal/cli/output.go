package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/picalc/internal/pi"
)

// OutputConfig controls how a result is shown and saved.
type OutputConfig struct {
	// OutputFile receives the digits when non-empty.
	OutputFile string
	// Quiet prints the digit line only.
	Quiet bool
	// Verbose shows full digit strings in summaries.
	Verbose bool
	// Details adds the analysis block.
	Details bool
}

// WriteResultToFile writes a commented header followed by the digit line
// to cfg.OutputFile, creating parent directories as needed.
func WriteResultToFile(result *pi.Result, duration time.Duration, algo string, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(cfg.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	fmt.Fprintf(file, "# π Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", algo)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# Digits: %d\n", result.Digits)
	fmt.Fprintf(file, "# Terms: %d\n", result.Terms)
	fmt.Fprintf(file, "# Precision: %d bits\n", result.Precision)
	if result.NearBoundary {
		fmt.Fprintf(file, "# Warning: last digit near a rounding boundary\n")
	}
	fmt.Fprintf(file, "\n%s\n", result.String())

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DisplayQuietResult prints only the digit line.
func DisplayQuietResult(out io.Writer, result *pi.Result) {
	fmt.Fprintln(out, result.String())
}

// DisplayResultWithConfig prints result according to cfg and saves it when
// an output file is configured. The confirmation of a saved file goes to
// errOut so that the digit line stays last on out.
func DisplayResultWithConfig(out, errOut io.Writer, result *pi.Result, duration time.Duration, algo string, cfg OutputConfig) error {
	if cfg.Quiet {
		DisplayQuietResult(out, result)
	} else {
		DisplayResult(result, duration, cfg.Details, out)
	}

	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(result, duration, algo, cfg); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(errOut, "%s✓ Result saved to: %s%s%s\n", ColorGreen(), ColorCyan(), cfg.OutputFile, ColorReset())
	}
	return nil
}
