// Package catalog loads the pricing catalog from a file or from the SQLite
// catalog tables and writes it back.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

// LoadFile reads a catalog from a .json, .yaml or .yml file.
func LoadFile(path string) (*pricing.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// Parse decodes catalog data. ext selects the format; anything other than
// .yaml/.yml is treated as JSON.
func Parse(data []byte, ext string) (*pricing.Catalog, error) {
	var c pricing.Catalog
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return &c, nil
}
