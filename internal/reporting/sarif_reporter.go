// internal/reporting/sarif_reporter.go
package reporting

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/reporting/sarif"
)

const (
	ToolName     = "stylebox"
	ToolInfoURI  = "https://github.com/xkilldash9x/stylebox"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
)

// ToolVersion is reported as the driver version. The CLI overrides it.
var ToolVersion = "dev"

var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// ruleLevels maps a diagnostic kind to its default SARIF level. Kinds not
// listed are errors.
var ruleLevels = map[string]sarif.Level{
	"unknown-property": sarif.LevelWarning,
	"invalid-value":    sarif.LevelWarning,
	"syntax":           sarif.LevelError,
}

// SARIFReporter renders lint results as a SARIF 2.1.0 log. One rule is
// registered per diagnostic kind. It is safe for concurrent use.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log

	mu        sync.Mutex
	ruleIndex map[string]int
}

func NewSARIFReporter(writer io.WriteCloser, toolVersion string, logger *zap.Logger) *SARIFReporter {
	log := &sarif.Log{
		Version: SARIFVersion,
		Schema:  SARIFSchema,
		Runs: []*sarif.Run{{
			Tool: &sarif.Tool{
				Driver: &sarif.ToolComponent{
					Name:           ToolName,
					Version:        pString(toolVersion),
					InformationURI: pString(ToolInfoURI),
					Rules:          []*sarif.ReportingDescriptor{},
				},
			},
			Results: []*sarif.Result{},
		}},
	}
	return &SARIFReporter{
		writer:    writer,
		logger:    logger.Named("sarif_reporter"),
		log:       log,
		ruleIndex: make(map[string]int),
	}
}

func (r *SARIFReporter) Write(sheet schemas.SheetDiagnostics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	run.Artifacts = append(run.Artifacts, &sarif.Artifact{
		Location: &sarif.ArtifactLocation{URI: pString(sheet.Name)},
	})
	for _, d := range sheet.Diagnostics {
		idx := r.ensureRule(d.Kind)
		rule := run.Tool.Driver.Rules[idx]
		run.Results = append(run.Results, &sarif.Result{
			RuleID:    rule.ID,
			RuleIndex: idx,
			Message:   &sarif.Message{Text: pString(d.Message)},
			Level:     rule.DefaultConfiguration.Level,
			Locations: []*sarif.Location{{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: pString(sheet.Name)},
					Region:           &sarif.Region{StartLine: max(d.Line, 1)},
				},
			}},
		})
	}
	return nil
}

// Close encodes the log and closes the writer.
func (r *SARIFReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	r.logger.Debug("Finalizing SARIF report",
		zap.Int("total_results", len(run.Results)),
		zap.Int("total_rules", len(run.Tool.Driver.Rules)))

	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	encodeErr := enc.Encode(r.log)
	closeErr := r.writer.Close()

	if encodeErr != nil {
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

// sanitizeRuleName turns a diagnostic kind into the suffix of a rule id.
func sanitizeRuleName(kind string) string {
	name := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(kind), "-"), "-")
	if name == "" {
		return "UNKNOWN"
	}
	return name
}

// ensureRule returns the index of the rule for kind, registering it first if
// needed. The caller holds r.mu.
func (r *SARIFReporter) ensureRule(kind string) int {
	if idx, ok := r.ruleIndex[kind]; ok {
		return idx
	}
	level, ok := ruleLevels[kind]
	if !ok {
		level = sarif.LevelError
	}
	driver := r.log.Runs[0].Tool.Driver
	id := "STYLEBOX-" + sanitizeRuleName(kind)
	driver.Rules = append(driver.Rules, &sarif.ReportingDescriptor{
		ID:                   id,
		Name:                 pString(kind),
		ShortDescription:     &sarif.MultiformatMessageString{Text: pString(describeKind(kind))},
		DefaultConfiguration: &sarif.Configuration{Level: level},
	})
	idx := len(driver.Rules) - 1
	r.ruleIndex[kind] = idx
	r.logger.Debug("Registered SARIF rule", zap.String("rule_id", id))
	return idx
}

func describeKind(kind string) string {
	switch kind {
	case "unknown-property":
		return "Declaration names a property that is not registered; it is dropped."
	case "invalid-value":
		return "Declaration value does not match the property grammar; it is dropped."
	case "syntax":
		return "Malformed rule or selector; the rule is dropped."
	}
	return "Style sheet diagnostic."
}

func pString(s string) *string {
	return &s
}
