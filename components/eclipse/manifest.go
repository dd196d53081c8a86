package eclipse

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	catalogVersionV1 = "1"
	// CatalogVersion exposes the current catalog manifest format version for tooling.
	CatalogVersion = catalogVersionV1
)

// CatalogDocument models a YAML/JSON manifest describing the metric catalog.
type CatalogDocument struct {
	Version string   `json:"version" yaml:"version"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Metrics []Metric `json:"metrics" yaml:"metrics"`
	Source  string   `json:"-" yaml:"-"`
}

// NewCatalogDocument wraps a catalog so it can be encoded.
func NewCatalogDocument(catalog *Catalog) *CatalogDocument {
	return &CatalogDocument{
		Version: catalogVersionV1,
		Name:    DashboardTitle,
		Metrics: catalog.Metrics(),
	}
}

// Catalog builds the immutable catalog described by the document.
func (doc *CatalogDocument) Catalog() *Catalog {
	return NewCatalog(doc.Metrics)
}

// ReadCatalog loads and validates a catalog manifest from disk.
func ReadCatalog(path string) (*CatalogDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("eclipse: open catalog %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("eclipse: decode catalog %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCatalog reads a catalog manifest from any reader.
func DecodeCatalog(r io.Reader) (*CatalogDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("eclipse: catalog is empty")
		}
		return nil, fmt.Errorf("eclipse: parse catalog: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeCatalog writes the document as YAML.
func EncodeCatalog(w io.Writer, doc *CatalogDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("eclipse: encode catalog: %w", err)
	}
	return encoder.Close()
}

// Validate checks the manifest against the catalog schema and the rules a
// schema cannot express.
func (doc *CatalogDocument) Validate() error {
	if doc.Version != catalogVersionV1 {
		return fmt.Errorf("eclipse: unsupported catalog version %q", doc.Version)
	}
	if err := defaultCatalogValidator.Validate(doc); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(doc.Metrics))
	for _, metric := range doc.Metrics {
		if _, exists := seen[metric.ID]; exists {
			return fmt.Errorf("eclipse: catalog duplicates metric id %s", metric.ID)
		}
		seen[metric.ID] = struct{}{}
	}
	return nil
}

func (doc *CatalogDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = catalogVersionV1
	}
	if doc.Metrics == nil {
		doc.Metrics = []Metric{}
	}
}
