package eclipse

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCatalog(t *testing.T) {
	const payload = `
version: "1"
name: spa-pack
metrics:
  - id: spa-partners
    title: Active Spa Partners
    value: "2,847"
    status: green
    progress: 92
    target: 3000
    details: 12% growth this quarter
    trend: +12%
    view: partners
  - id: carbon-footprint
    title: Carbon Footprint
    value: -34%
    status: yellow
    progress: 68
    target: 50
    details: Reduction since 2020
    trend: -8% YoY
    view: sustainability
`
	doc, err := DecodeCatalog(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Metrics, 2)

	catalog := doc.Catalog()
	metric, ok := catalog.Metric("spa-partners")
	require.True(t, ok)
	assert.Equal(t, "Active Spa Partners", metric.Title)
	assert.Equal(t, StatusGreen, metric.Status)
	assert.Equal(t, float64(3000), metric.Target)
	assert.Equal(t, CategoryPartners, metric.View)
	assert.Equal(t, []Category{CategoryPartners, CategorySustainability}, catalog.Categories())
}

func TestDecodeCatalogDefaultsVersion(t *testing.T) {
	doc, err := DecodeCatalog(strings.NewReader("metrics: []\n"))
	require.NoError(t, err)
	assert.Equal(t, CatalogVersion, doc.Version)
}

func TestDecodeCatalogRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"unknown field":   "version: \"1\"\nmetrics: []\nwidgets: []\n",
		"bad version":     "version: \"2\"\nmetrics: []\n",
		"bad status":      "metrics:\n  - {id: a, title: A, value: \"1\", status: blue, progress: 1, view: revenue}\n",
		"progress range":  "metrics:\n  - {id: a, title: A, value: \"1\", status: red, progress: 140, view: revenue}\n",
		"missing view":    "metrics:\n  - {id: a, title: A, value: \"1\", status: red, progress: 10}\n",
		"duplicate ids":   "metrics:\n  - {id: a, title: A, value: \"1\", status: red, progress: 1, view: revenue}\n  - {id: a, title: B, value: \"2\", status: red, progress: 2, view: revenue}\n",
		"negative target": "metrics:\n  - {id: a, title: A, value: \"1\", status: red, progress: 1, target: -1, view: revenue}\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeCatalog(strings.NewReader(payload)); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestEncodeCatalogRoundTripsDefaultCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCatalog(&buf, NewCatalogDocument(DefaultCatalog())))

	doc, err := DecodeCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultMetrics(), doc.Metrics)
}

func TestReadCatalogRecordsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	var buf bytes.Buffer
	require.NoError(t, EncodeCatalog(&buf, NewCatalogDocument(DefaultCatalog())))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	doc, err := ReadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, 16, doc.Catalog().Len())
}

func TestReadCatalogMissingFile(t *testing.T) {
	_, err := ReadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
