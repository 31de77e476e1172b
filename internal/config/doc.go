// Package config provides configuration management for the annex downloader.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings from JSON or YAML files
//   - Validation before a run starts
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Page: the ANS "atualização do rol de procedimentos" page
//	// Markers: Anexo_I, Anexo_II
//	// Extensions: pdf, xls, xlsx, doc, docx
//	// 4 workers, 3 attempts per file, 15 second timeout
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in .yaml or .yml are decoded with gopkg.in/yaml.v2; any other
// extension is decoded as JSON. Keys absent from the file keep their
// defaults.
//
// # Validation
//
//	if err := settings.Validate(); err != nil {
//	    // errors.Is(err, model.ErrInvalidSettings)
//	}
package config
