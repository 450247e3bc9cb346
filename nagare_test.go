package nagare_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nagare "github.com/nagare-ml/nagare"
)

func publicDataset(id string, offset float64) nagare.Dataset {
	n := 200
	temp := make([]float64, n)
	cnt := make([]float64, n)
	pred := make([]float64, n)
	season := make([]string, n)
	for i := 0; i < n; i++ {
		temp[i] = float64(i) + offset
		cnt[i] = 100 + 2*temp[i]
		pred[i] = cnt[i] + float64(i%7-3)
		season[i] = []string{"spring", "summer", "fall", "winter"}[i%4]
	}
	return nagare.Dataset{
		ID: id,
		Columns: []nagare.Column{
			{Name: "temp", Type: nagare.ColumnNumeric},
			{Name: "season", Type: nagare.ColumnCategorical},
			{Name: "cnt", Type: nagare.ColumnNumeric},
		},
		Numeric:     map[string][]float64{"temp": temp, "cnt": cnt},
		Categorical: map[string][]string{"season": season},
		Target:      "cnt",
		Predictions: pred,
	}
}

func TestRunMonitorStableWindow(t *testing.T) {
	ref := publicDataset("reference", 0)
	win := publicDataset("week1", 0)

	reports, err := nagare.RunMonitor(context.Background(), ref, []nagare.Dataset{win}, nagare.Thresholds{})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "week1", report.WindowID)
	assert.Equal(t, nagare.VerdictStable, report.Verdict)
	assert.NotEqual(t, [16]byte{}, [16]byte(report.ID))
	require.NotNil(t, report.TargetDrift)
	assert.NotEmpty(t, report.Performance)
}

func TestRunMonitorShiftedWindow(t *testing.T) {
	ref := publicDataset("reference", 0)
	win := publicDataset("week2", 500)

	reports, err := nagare.RunMonitor(context.Background(), ref, []nagare.Dataset{win}, nagare.Thresholds{})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, nagare.VerdictDrifted, reports[0].Verdict)
	assert.NotEmpty(t, reports[0].Causes)
}

func TestRunMonitorMissingReference(t *testing.T) {
	_, err := nagare.RunMonitor(context.Background(), nagare.Dataset{}, nil, nagare.Thresholds{})
	assert.ErrorIs(t, err, nagare.ErrMissingReference)
}

func TestRunMonitorReportOrder(t *testing.T) {
	ref := publicDataset("reference", 0)
	windows := []nagare.Dataset{
		publicDataset("week1", 0),
		publicDataset("week2", 500),
		publicDataset("week3", 0),
	}

	reports, err := nagare.RunMonitor(context.Background(), ref, windows, nagare.Thresholds{Workers: 3})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "week1", reports[0].WindowID)
	assert.Equal(t, "week2", reports[1].WindowID)
	assert.Equal(t, "week3", reports[2].WindowID)
}
