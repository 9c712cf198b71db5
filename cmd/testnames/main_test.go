package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unbound-force/testnames/internal/config"
	"github.com/unbound-force/testnames/internal/report"
	"github.com/unbound-force/testnames/internal/rules"
)

const calcPkg = "github.com/unbound-force/testnames/internal/loader/testdata/src/calc"

const parserTest = `package com.acme;

import org.junit.jupiter.api.Test;

class ParserTest {
    @Test
    void testParsing() {
    }
}
`

// writeJavaTree creates a source tree holding a single test class with
// no production counterpart.
func writeJavaTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pkg := filepath.Join(dir, "src", "test", "java", "com", "acme")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "ParserTest.java"), []byte(parserTest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// ---------------------------------------------------------------------------
// runCheck tests
// ---------------------------------------------------------------------------

func TestRunCheck_InvalidFormat(t *testing.T) {
	err := runCheck(checkParams{
		lang:   "go",
		format: "yaml",
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), `invalid format "yaml"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestRunCheck_InvalidLanguage(t *testing.T) {
	err := runCheck(checkParams{
		lang:   "kotlin",
		format: "text",
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid language")
	}
	if !strings.Contains(err.Error(), `invalid language "kotlin"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestRunCheck_GoPackage_Verbose(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := runCheck(checkParams{
		patterns:      []string{calcPkg},
		lang:          "go",
		format:        "text",
		maxComplaints: -1,
		verbose:       true,
		stdout:        &stdout,
		stderr:        &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "=== calc_test ===") {
		t.Errorf("expected output to list calc_test, got:\n%s", out)
	}
	if !strings.Contains(out, "1 class(es) checked, 2 test case(s)") {
		t.Errorf("expected summary for 1 class and 2 cases, got:\n%s", out)
	}
	if strings.Contains(stderr.String(), "Complaints:") {
		t.Error("no CI summary expected without a limit")
	}
}

func TestRunCheck_Java_JSONFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := runCheck(checkParams{
		patterns:      []string{writeJavaTree(t)},
		lang:          "java",
		format:        "json",
		maxComplaints: -1,
		stdout:        &stdout,
		stderr:        &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rep report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(rep.Classes) != 1 || rep.Classes[0].Name != "ParserTest" {
		t.Fatalf("expected ParserTest only, got %+v", rep.Classes)
	}
	var got []string
	for _, c := range rep.Classes[0].Complaints {
		got = append(got, c.Rule)
	}
	for _, want := range []string{rules.IDNoTestWord, rules.IDProductionClass} {
		if !strings.Contains(strings.Join(got, ","), want) {
			t.Errorf("expected %s complaint, got %v", want, got)
		}
	}
}

func TestRunCheck_MaxComplaintsExceeded(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := runCheck(checkParams{
		patterns:      []string{writeJavaTree(t)},
		lang:          "java",
		format:        "text",
		maxComplaints: 0,
		stdout:        &stdout,
		stderr:        &stderr,
	})
	if err == nil {
		t.Fatal("expected error when complaints exceed the maximum")
	}
	if !strings.Contains(err.Error(), "exceed maximum 0") {
		t.Errorf("unexpected error message: %s", err)
	}
	if !strings.Contains(stderr.String(), "(FAIL)") {
		t.Errorf("expected FAIL summary, got %q", stderr.String())
	}
}

func TestRunCheck_DisabledRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.Disable = []string{rules.IDNoTestWord, rules.IDProductionClass, rules.IDAllTestsInPresentSimple}

	var stdout, stderr bytes.Buffer
	err := runCheck(checkParams{
		patterns:      []string{writeJavaTree(t)},
		lang:          "java",
		format:        "json",
		cfg:           cfg,
		maxComplaints: 0,
		stdout:        &stdout,
		stderr:        &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stderr.String(), "Complaints: 0/0 (PASS)") {
		t.Errorf("expected PASS summary, got %q", stderr.String())
	}
}

func TestRunCheck_WarnsAboutSkippedExtensions(t *testing.T) {
	dir := t.TempDir()
	src := `package com.acme;

import org.junit.jupiter.api.extension.*;

public class ResolverTest implements ParameterResolver {
}
`
	if err := os.WriteFile(filepath.Join(dir, "ResolverTest.java"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runCheck(checkParams{
		patterns:      []string{dir},
		lang:          "java",
		format:        "json",
		maxComplaints: -1,
		stdout:        &stdout,
		stderr:        &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rep report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := []string{"no test classes found", "skipped 1 framework extension class(es)"}
	if strings.Join(rep.Metadata.Warnings, "|") != strings.Join(want, "|") {
		t.Errorf("warnings = %v, want %v", rep.Metadata.Warnings, want)
	}
}

func TestRunCheck_JavaRejectsSeveralRoots(t *testing.T) {
	err := runCheck(checkParams{
		patterns: []string{"a", "b"},
		lang:     "java",
		format:   "text",
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	})
	if err == nil || !strings.Contains(err.Error(), "single source root") {
		t.Errorf("expected single source root error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// CI threshold tests
// ---------------------------------------------------------------------------

func TestPrintCISummary_NoLimit(t *testing.T) {
	var buf bytes.Buffer
	printCISummary(&buf, report.New(nil, "", 0), -1)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestCheckMaxComplaints(t *testing.T) {
	rep := report.New(nil, "", 0)
	rep.Summary.Complaints = 3

	tests := []struct {
		max     int
		wantErr bool
	}{
		{max: -1, wantErr: false},
		{max: 0, wantErr: true},
		{max: 2, wantErr: true},
		{max: 3, wantErr: false},
		{max: 10, wantErr: false},
	}
	for _, tt := range tests {
		err := checkMaxComplaints(rep, tt.max)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkMaxComplaints(max=%d) error = %v, wantErr %v", tt.max, err, tt.wantErr)
		}
	}
}

// ---------------------------------------------------------------------------
// loadConfig tests
// ---------------------------------------------------------------------------

func TestLoadConfig_NoOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig("", -1, -1, nil, nil)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Rules.MaxComplexity != 10 {
		t.Errorf("max complexity = %d, want 10 (default)", cfg.Rules.MaxComplexity)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig("", 4, 2, []string{rules.IDPresentTense}, []string{rules.IDNoTestWord})
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Rules.MaxComplexity != 4 {
		t.Errorf("max complexity = %d, want 4", cfg.Rules.MaxComplexity)
	}
	if cfg.Jobs != 2 {
		t.Errorf("jobs = %d, want 2", cfg.Jobs)
	}
	if len(cfg.Rules.Enable) != 1 || len(cfg.Rules.Disable) != 1 {
		t.Errorf("rules = %+v", cfg.Rules)
	}
}

func TestLoadConfig_FileMergedWithFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	content := []byte("rules:\n  disable: [no-test-word]\n  max_complexity: 7\n")
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cfgPath, -1, -1, nil, []string{rules.IDSimpleTestCase})
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Rules.MaxComplexity != 7 {
		t.Errorf("max complexity = %d, want 7", cfg.Rules.MaxComplexity)
	}
	want := []string{rules.IDNoTestWord, rules.IDSimpleTestCase}
	if strings.Join(cfg.Rules.Disable, ",") != strings.Join(want, ",") {
		t.Errorf("disable = %v, want %v", cfg.Rules.Disable, want)
	}
}

func TestLoadConfig_UnknownRuleRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := loadConfig("", -1, -1, []string{"no-such-rule"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown rule")
	}
	if !strings.Contains(err.Error(), `unknown rule "no-such-rule"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

// ---------------------------------------------------------------------------
// rules and schema command tests
// ---------------------------------------------------------------------------

func TestRunRules_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runRules(rulesParams{format: "json", stdout: &buf}); err != nil {
		t.Fatalf("runRules failed: %v", err)
	}
	var defs []rules.Definition
	if err := json.Unmarshal(buf.Bytes(), &defs); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(defs) != len(rules.DefaultRegistry().Definitions()) {
		t.Errorf("got %d definitions", len(defs))
	}
}

func TestRunRules_InvalidFormat(t *testing.T) {
	err := runRules(rulesParams{format: "xml", stdout: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), `invalid format "xml"`) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestRulesCmd_Text(t *testing.T) {
	cmd := newRulesCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("rules command failed: %v", err)
	}
	if !strings.Contains(buf.String(), rules.IDAllTestsInPresentSimple) {
		t.Errorf("rules output misses %s:\n%s", rules.IDAllTestsInPresentSimple, buf.String())
	}
}

func TestSchemaCmd_OutputsValidJSON(t *testing.T) {
	cmd := newSchemaCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Errorf("schema output is not valid JSON: %v", err)
	}
	for _, field := range []string{`"$schema"`, `"ClassReport"`, `"Complaint"`, `"Metadata"`} {
		if !strings.Contains(buf.String(), field) {
			t.Errorf("schema output missing %s", field)
		}
	}
}
