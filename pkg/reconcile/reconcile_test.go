package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryEmpty(t *testing.T) {
	assert.Equal(t, "No files were processed for reconciliation.", Summary(nil))
}

func TestSummary(t *testing.T) {
	results := []Result{
		{FilePath: "/data/2026-08-10/propostas.csv", EntityType: "propostas", SourceCount: 100, DBCount: 100, Match: true},
		{FilePath: "/data/2026-08-10/programas.csv", EntityType: "programas", SourceCount: 50, DBCount: 47, Match: false, Discrepancy: 3},
		{FilePath: "/data/2026-08-10/emendas.csv", EntityType: "emendas", SourceCount: -1, DBCount: -1, Match: false},
	}

	got := Summary(results)

	assert.Contains(t, got, "RECONCILIATION SUMMARY")
	assert.Contains(t, got, "Files processed: 3")
	assert.Contains(t, got, "Passed: 1")
	assert.Contains(t, got, "Failed: 2")
	assert.Contains(t, got, "Total discrepancy: 3 records")
	assert.Contains(t, got, "[OK] propostas.csv (propostas): source=100 db=100")
	assert.Contains(t, got, "[MISMATCH] programas.csv (programas): source=50 db=47")
	// unreadable files carry sentinel counts
	assert.Contains(t, got, "[MISMATCH] emendas.csv (emendas): source=-1 db=-1")
}
