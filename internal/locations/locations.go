// Package locations loads product location documents written by the
// sequencing pipelines and backfills them into the warehouse table that maps
// products to their catalog paths.
package locations

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"keel/internal/mlwh"
	"keel/internal/services"
)

// SupportedVersion is the document schema version this build understands.
const SupportedVersion = "1.0"

// Document is one product location file.
type Document struct {
	Version  string    `json:"version"`
	Products []Product `json:"products"`
}

// Product is one entry in a location document.
type Product struct {
	ID                    string `json:"id_product"`
	Platform              string `json:"seq_platform_name"`
	Pipeline              string `json:"pipeline_name"`
	RootCollection        string `json:"irods_root_collection"`
	DataRelativePath      string `json:"irods_data_relative_path,omitempty"`
	SecondaryRelativePath string `json:"irods_secondary_data_relative_path,omitempty"`
}

// Load reads and validates a location document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open location file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a location document.
func Parse(r io.Reader) (*Document, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "locations", "parse", "malformed document", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document version and every product entry.
func (d *Document) Validate() error {
	if d.Version != SupportedVersion {
		return services.Wrap(services.ErrValidation, "locations", "validate",
			fmt.Sprintf("unsupported version %q, expected %q", d.Version, SupportedVersion), nil)
	}
	if len(d.Products) == 0 {
		return services.Wrap(services.ErrValidation, "locations", "validate", "document has no products", nil)
	}

	seen := make(map[string]struct{}, len(d.Products))
	for i, product := range d.Products {
		if err := product.validate(); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
		key := product.ID + "\x00" + product.RootCollection
		if _, dup := seen[key]; dup {
			return services.Wrap(services.ErrValidation, "locations", "validate",
				fmt.Sprintf("duplicate product %s in %s", product.ID, product.RootCollection), nil)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (p Product) validate() error {
	switch {
	case p.ID == "":
		return services.Wrap(services.ErrValidation, "locations", "validate", "missing id_product", nil)
	case !mlwh.Platform(p.Platform).Valid():
		return services.Wrap(services.ErrValidation, "locations", "validate",
			fmt.Sprintf("unknown platform %q", p.Platform), nil)
	case p.Pipeline == "":
		return services.Wrap(services.ErrValidation, "locations", "validate", "missing pipeline_name", nil)
	case !strings.HasPrefix(p.RootCollection, "/"):
		return services.Wrap(services.ErrValidation, "locations", "validate",
			fmt.Sprintf("root collection %q is not absolute", p.RootCollection), nil)
	case strings.HasPrefix(p.DataRelativePath, "/"):
		return services.Wrap(services.ErrValidation, "locations", "validate",
			fmt.Sprintf("data path %q must be relative", p.DataRelativePath), nil)
	case strings.HasPrefix(p.SecondaryRelativePath, "/"):
		return services.Wrap(services.ErrValidation, "locations", "validate",
			fmt.Sprintf("secondary data path %q must be relative", p.SecondaryRelativePath), nil)
	}
	return nil
}

// Rows converts the document to warehouse location rows.
func (d *Document) Rows() []mlwh.SeqProductIrodsLocation {
	rows := make([]mlwh.SeqProductIrodsLocation, 0, len(d.Products))
	for _, product := range d.Products {
		product := product
		row := mlwh.SeqProductIrodsLocation{
			IDProduct:           product.ID,
			SeqPlatformName:     mlwh.Platform(product.Platform),
			PipelineName:        product.Pipeline,
			IrodsRootCollection: product.RootCollection,
		}
		if product.DataRelativePath != "" {
			row.IrodsDataRelativePath = &product.DataRelativePath
		}
		if product.SecondaryRelativePath != "" {
			row.IrodsSecondaryDataRelativePath = &product.SecondaryRelativePath
		}
		rows = append(rows, row)
	}
	return rows
}
