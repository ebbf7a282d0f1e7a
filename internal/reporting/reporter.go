// -- internal/reporting/reporter.go --
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/api/schemas"
)

// Reporter writes lint results sheet by sheet.
type Reporter interface {
	// Write records the diagnostics of one sheet.
	Write(sheet schemas.SheetDiagnostics) error
	// Close finalizes the report and closes the underlying file, if any.
	Close() error
}

type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to stdout.
func New(format, outputPath string, logger *zap.Logger) (Reporter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	r, err := NewWithWriter(format, writer, logger)
	if err != nil {
		writer.Close()
		return nil, err
	}
	return r, nil
}

// NewWithWriter creates a reporter that takes ownership of w.
func NewWithWriter(format string, w io.WriteCloser, logger *zap.Logger) (Reporter, error) {
	switch format {
	case "sarif":
		return NewSARIFReporter(w, ToolVersion, logger), nil
	case "json":
		return &jsonReporter{writer: w}, nil
	}
	return nil, fmt.Errorf("unsupported output format: %s", format)
}

// jsonReporter buffers sheets into a schemas.LintReport.
type jsonReporter struct {
	writer io.WriteCloser
	report schemas.LintReport
}

func (r *jsonReporter) Write(sheet schemas.SheetDiagnostics) error {
	r.report.Sheets = append(r.report.Sheets, sheet)
	r.report.Total += len(sheet.Diagnostics)
	return nil
}

func (r *jsonReporter) Close() error {
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	encodeErr := enc.Encode(r.report)
	closeErr := r.writer.Close()
	if encodeErr != nil {
		return fmt.Errorf("failed to encode lint report: %w", encodeErr)
	}
	return closeErr
}
