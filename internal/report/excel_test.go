package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsched/pkg/domain"
)

func TestWriteProducesValidXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	summaries := []RunSummary{
		{Algorithm: "dr", Order: "size", FlowsTotal: 10, AdmittedAvg: 7, RejectedAvg: 3, AdmittedRate: 0.7},
	}
	details := []BatchDetail{
		{
			Algorithm: "dr",
			Admitted: []domain.SuccessRecord{
				{Flow: domain.Flow{Src: "h1", Dst: "h2", SizeMbit: 100, Arrival: 0, DeadlineDuration: 5}, FinishTime: 4},
			},
			Rejected: []domain.FailureRecord{
				{Flow: domain.Flow{Src: "h3", Dst: "h4", SizeMbit: 50, Arrival: 1, DeadlineDuration: 2}},
			},
		},
	}

	err := Write(path, "Batch", summaries, details)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, "PK", string(data[:2]), "xlsx files are zip archives, starting with the PK signature")
}

func TestWriteDefaultsSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := Write(path, "", nil, nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCellAddr(t *testing.T) {
	assert.Equal(t, "A1", cellAddr("A", 1))
	assert.Equal(t, "F12", cellAddr("F", 12))
}
