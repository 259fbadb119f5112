package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{{Key: "id", Title: "ID"}, {Key: "status", Title: "Status", Width: 2}},
		Rows: []map[string]string{
			{"id": "pu-001", "status": "PENDING"},
			{"id": "pu-002", "status": "FAILED, retry"},
		},
	}
}

func TestCSVExporterOrdersColumnsAndQuotes(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "ID,Status\npu-001,PENDING\npu-002,\"FAILED, retry\"\n", string(out))
}

func TestExportersRejectEmptyColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterWritesDocument(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewPDFExporter().Write(buf, sampleDataset(), "Synced price updates"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestColumnWidthsUseWeights(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	require.Len(t, widths, 2)
	assert.InDelta(t, printableWidth/3, widths[0], 0.001)
	assert.InDelta(t, printableWidth*2/3, widths[1], 0.001)
}
