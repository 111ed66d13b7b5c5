package main_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all e2e tests.
	tmp, err := os.MkdirTemp("", "deideval-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	binaryPath = filepath.Join(tmp, "deideval")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build binary: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

// runBinary runs the deideval binary and returns stdout, stderr, and
// the exit code.
func runBinary(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("unexpected error running binary: %v", err)
		}
	}

	return outBuf.String(), errBuf.String(), exitCode
}

// writeFixture creates a file with the given content in dir.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

func annotated(spans ...string) string {
	return "<deIdi2b2><TAGS>\n" + strings.Join(spans, "\n") + "\n</TAGS></deIdi2b2>\n"
}

const (
	dateSpan = `<DATE id="P0" start="13" end="23" text="2066-04-07" TYPE="DATE"/>`
	nameSpan = `<NAME id="P1" start="29" end="34" text="Smith" TYPE="DOCTOR"/>`
)

func TestE2E_NoArgs_PrintsUsage(t *testing.T) {
	_, stderr, exitCode := runBinary(t)
	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stderr, "Usage: deideval") {
		t.Errorf("expected usage on stderr, got %q", stderr)
	}
}

func TestE2E_UnknownCommand_ExitsTwo(t *testing.T) {
	_, stderr, exitCode := runBinary(t, "lint")
	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr = %q, want unknown-command message", stderr)
	}
}

func TestE2E_Spans_IdenticalCorporaIsPerfect(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	for _, dir := range []string{gold, system} {
		writeFixture(t, dir, "110-01.xml", annotated(dateSpan, nameSpan))
		writeFixture(t, dir, "220-03.xml", annotated(dateSpan))
	}

	stdout, stderr, exitCode := runBinary(t, "spans", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d, stderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stdout, "TOTAL") {
		t.Errorf("stdout missing TOTAL row:\n%s", stdout)
	}
	totalLine := ""
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "TOTAL") {
			totalLine = line
		}
	}
	if !strings.Contains(totalLine, "1.0000") {
		t.Errorf("TOTAL row %q, want perfect scores", totalLine)
	}
}

func TestE2E_Spans_VerbosePerDocument(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan))
	writeFixture(t, system, "110-01.xml", annotated(dateSpan))

	stdout, _, exitCode := runBinary(t, "spans", "-v", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d", exitCode)
	}
	if !strings.Contains(stdout, "110-01") {
		t.Errorf("verbose output missing per-document row:\n%s", stdout)
	}
}

func TestE2E_Spans_FilterRestrictsScoring(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan, nameSpan))
	// The system missed the NAME span entirely.
	writeFixture(t, system, "110-01.xml", annotated(dateSpan))

	stdout, _, exitCode := runBinary(t, "spans", "--filter", "DATE", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d", exitCode)
	}
	totalLine := ""
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "TOTAL") {
			totalLine = line
		}
	}
	if !strings.Contains(totalLine, "1.0000") {
		t.Errorf("TOTAL row %q, want perfect scores under DATE filter", totalLine)
	}
}

func TestE2E_Spans_UnresolvableFilterWarnsButScores(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan))
	writeFixture(t, system, "110-01.xml", annotated(dateSpan))

	stdout, stderr, exitCode := runBinary(t, "spans", "--filter", "MEDICATION", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d", exitCode)
	}
	if !strings.Contains(stderr, "WARNING") {
		t.Errorf("stderr %q, want a warning about the unresolved value", stderr)
	}
	if !strings.Contains(stdout, "TOTAL") {
		t.Errorf("metrics missing despite recoverable warning:\n%s", stdout)
	}
}

func TestE2E_Spans_MissingPathIsFatal(t *testing.T) {
	gold := t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan))

	stdout, stderr, exitCode := runBinary(t, "spans", gold, filepath.Join(gold, "absent"))
	if exitCode != 1 {
		t.Fatalf("exit code %d, want 1", exitCode)
	}
	if !strings.Contains(stderr, "deideval:") {
		t.Errorf("stderr %q, want a deideval: error message", stderr)
	}
	if stdout != "" {
		t.Errorf("fatal run emitted metrics:\n%s", stdout)
	}
}

func TestE2E_Spans_MismatchedCorporaIsFatal(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan))
	writeFixture(t, system, "220-03.xml", annotated(dateSpan))

	stdout, stderr, exitCode := runBinary(t, "spans", gold, system)
	if exitCode != 1 {
		t.Fatalf("exit code %d, want 1", exitCode)
	}
	if !strings.Contains(stderr, "document sets differ") {
		t.Errorf("stderr %q, want a pairing error", stderr)
	}
	if stdout != "" {
		t.Errorf("fatal run emitted metrics:\n%s", stdout)
	}
}

func TestE2E_Spans_JSONFormat(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "110-01.xml", annotated(dateSpan))
	writeFixture(t, system, "110-01.xml", annotated(dateSpan))

	stdout, _, exitCode := runBinary(t, "spans", "--format", "json", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d", exitCode)
	}
	if !strings.Contains(stdout, `"total"`) || !strings.Contains(stdout, `"f1": 1`) {
		t.Errorf("JSON output missing expected fields:\n%s", stdout)
	}
}

func valenceRecord(score string) string {
	return fmt.Sprintf("<RDoc><TAGS><POSITIVE_VALENCE score=%q/></TAGS></RDoc>\n", score)
}

func TestE2E_Severity_WorkedExample(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	for name, scores := range map[string][2]string{
		"101-01.xml": {"ABSENT", "ABSENT"},
		"101-02.xml": {"ABSENT", "MILD"},
		"101-03.xml": {"SEVERE", "SEVERE"},
		"101-04.xml": {"SEVERE", "MODERATE"},
	} {
		writeFixture(t, gold, name, valenceRecord(scores[0]))
		writeFixture(t, system, name, valenceRecord(scores[1]))
	}

	stdout, stderr, exitCode := runBinary(t, "severity", "-v", gold, system)
	if exitCode != 0 {
		t.Fatalf("exit code %d, stderr: %s", exitCode, stderr)
	}
	for _, want := range []string{"absent", "severe", "83.3333%", "SCORE", "101-02.xml", "Wilcoxon"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("severity output missing %q:\n%s", want, stdout)
		}
	}
}

func TestE2E_Severity_BadLabelIsFatal(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "101-01.xml", valenceRecord("ABSENT"))
	writeFixture(t, system, "101-01.xml", valenceRecord("DREADFUL"))

	stdout, stderr, exitCode := runBinary(t, "severity", gold, system)
	if exitCode != 1 {
		t.Fatalf("exit code %d, want 1", exitCode)
	}
	if !strings.Contains(stderr, "DREADFUL") {
		t.Errorf("stderr %q, want the bad label named", stderr)
	}
	if stdout != "" {
		t.Errorf("fatal run emitted metrics:\n%s", stdout)
	}
}

func TestE2E_Severity_MismatchedDirectoriesIsFatal(t *testing.T) {
	gold, system := t.TempDir(), t.TempDir()
	writeFixture(t, gold, "101-01.xml", valenceRecord("ABSENT"))
	writeFixture(t, system, "101-02.xml", valenceRecord("ABSENT"))

	_, stderr, exitCode := runBinary(t, "severity", gold, system)
	if exitCode != 1 {
		t.Fatalf("exit code %d, want 1", exitCode)
	}
	if !strings.Contains(stderr, "same XML files") {
		t.Errorf("stderr %q, want a file-set mismatch error", stderr)
	}
}

func TestE2E_Version(t *testing.T) {
	stdout, _, exitCode := runBinary(t, "version")
	if exitCode != 0 {
		t.Fatalf("exit code %d", exitCode)
	}
	if !strings.Contains(stdout, "deideval") {
		t.Errorf("version output %q", stdout)
	}
}
