package employees

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/themis/pkg/rules"
)

const directoryYAML = `employees:
  - id: EMP-001
    name: Dana Whitfield
    role: trader
    division: equities
    firm: Meridian Capital
    covered_tickers: [ACME, GLOBEX]
    restricted_tickers: [INITECH]
    quick_reference:
      desk: "equities-3"
  - id: EMP-002
    name: Priya Raman
    role: analyst
    division: research
    firm: Meridian Capital
`

func writeDirectory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing directory file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir, err := Load(writeDirectory(t, directoryYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if dir.Len() != 2 {
		t.Errorf("Len() = %d, want 2", dir.Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeDirectory(t, "employees: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}

func TestLoad_EntryMissingID(t *testing.T) {
	_, err := Load(writeDirectory(t, "employees:\n  - role: trader\n"))
	if err == nil || !strings.Contains(err.Error(), "missing id") {
		t.Errorf("Load() error = %v, want missing-id failure", err)
	}
}

func TestDirectory_Lookup(t *testing.T) {
	dir, err := Load(writeDirectory(t, directoryYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	employee, err := dir.Lookup("EMP-001")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if employee.Role != "trader" || employee.Division != "equities" || employee.Firm != "Meridian Capital" {
		t.Errorf("employee = %+v", employee)
	}
	if len(employee.CoveredTickers) != 2 || employee.CoveredTickers[0] != "ACME" {
		t.Errorf("CoveredTickers = %v", employee.CoveredTickers)
	}
	if len(employee.RestrictedTickers) != 1 || employee.RestrictedTickers[0] != "INITECH" {
		t.Errorf("RestrictedTickers = %v", employee.RestrictedTickers)
	}
	if employee.QuickReference["desk"] != "equities-3" {
		t.Errorf("QuickReference = %v", employee.QuickReference)
	}
}

func TestDirectory_LookupUnknownID(t *testing.T) {
	dir, err := Load(writeDirectory(t, directoryYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	_, err = dir.Lookup("EMP-999")
	if !rules.IsNotFound(err) {
		t.Errorf("Lookup() error = %v, want not-found", err)
	}
}

func TestEmpty(t *testing.T) {
	dir := Empty()
	if dir.Len() != 0 {
		t.Errorf("Len() = %d, want 0", dir.Len())
	}
	if _, err := dir.Lookup("EMP-001"); !rules.IsNotFound(err) {
		t.Errorf("Lookup() error = %v, want not-found", err)
	}
}
