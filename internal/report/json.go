// Package report provides output formatters for check results in
// JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/unbound-force/testnames/internal/engine"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/rules"
)

// SchemaVersion is the version of the JSON output format.
const SchemaVersion = "1.0.0"

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version  string        `json:"version"`
	RunID    string        `json:"run_id"`
	Metadata Metadata      `json:"metadata"`
	Summary  Summary       `json:"summary"`
	Classes  []ClassReport `json:"classes"`
}

// Metadata describes the run that produced a report.
type Metadata struct {
	ToolVersion string   `json:"tool_version"`
	GoVersion   string   `json:"go_version"`
	DurationMS  int64    `json:"duration_ms"`
	Rules       []string `json:"rules"`
	Warnings    []string `json:"warnings"`
}

// Summary holds the run totals.
type Summary struct {
	Classes    int `json:"classes"`
	Cases      int `json:"cases"`
	Complaints int `json:"complaints"`

	// Findings also counts complaints wrapped by compound complaints.
	Findings int `json:"findings"`
}

// ClassReport lists the complaints of one test class.
type ClassReport struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Language   model.Language    `json:"language"`
	Cases      int               `json:"cases"`
	Complaints []ComplaintReport `json:"complaints"`
}

// ComplaintReport is the serialized form of a complaint.
type ComplaintReport struct {
	ID       string            `json:"id"`
	Rule     string            `json:"rule"`
	Subject  string            `json:"subject"`
	Location string            `json:"location"`
	Message  string            `json:"message"`
	Children []ComplaintReport `json:"children,omitempty"`
}

// New builds a report from an engine result. Every report gets a fresh
// run ID.
func New(res *engine.Result, toolVersion string, duration time.Duration) *JSONReport {
	rep := &JSONReport{
		Version: SchemaVersion,
		RunID:   uuid.NewString(),
		Metadata: Metadata{
			ToolVersion: toolVersion,
			GoVersion:   runtime.Version(),
			DurationMS:  duration.Milliseconds(),
			Rules:       []string{},
		},
		Classes: []ClassReport{},
	}
	if res == nil {
		return rep
	}

	rep.Metadata.Rules = append(rep.Metadata.Rules, res.Rules...)
	for _, c := range res.Classes {
		cr := ClassReport{
			Name:       c.Class.Name,
			Path:       c.Class.Path,
			Language:   c.Class.Language,
			Cases:      len(c.Class.Cases),
			Complaints: complaintReports(c.Complaints),
		}
		rep.Classes = append(rep.Classes, cr)
	}
	rep.Summary = Summary{
		Classes:    len(res.Classes),
		Cases:      res.Cases(),
		Complaints: res.Count(),
		Findings:   res.Findings(),
	}
	return rep
}

// Warn records a run warning in the report metadata.
func (r *JSONReport) Warn(format string, args ...any) {
	r.Metadata.Warnings = append(r.Metadata.Warnings, fmt.Sprintf(format, args...))
}

func complaintReports(cs []rules.Complaint) []ComplaintReport {
	out := make([]ComplaintReport, 0, len(cs))
	for _, c := range cs {
		out = append(out, ComplaintReport{
			ID:       c.ID(),
			Rule:     c.Rule(),
			Subject:  c.Subject().Name(),
			Location: c.Subject().Location(),
			Message:  c.Message(),
			Children: complaintReportsOrNil(c.Children()),
		})
	}
	return out
}

func complaintReportsOrNil(cs []rules.Complaint) []ComplaintReport {
	if len(cs) == 0 {
		return nil
	}
	return complaintReports(cs)
}

// WriteJSON writes the report as formatted JSON to the writer.
func WriteJSON(w io.Writer, rep *JSONReport) error {
	if rep == nil {
		rep = New(nil, "", 0)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
