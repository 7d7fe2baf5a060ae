// =============================================================================
// FIDJI Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   fidjiconv convert   - Convert one FIDJI document
//   fidjiconv process   - Convert every document in the input directory
//   fidjiconv inspect   - Summarize and validate a document
//   fidjiconv report    - Export a document as an XLSX workbook
//   fidjiconv version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/model       : normalized property/lease/company model
//   - internal/fidji       : FIDJI names, values, hashes and errors
//   - internal/xmlreader   : FIDJI document -> model
//   - internal/xmlwriter   : model -> FIDJI document
//   - internal/validation  : cross-reference checks
//   - internal/converter   : plugin, workers and file pipeline
//   - internal/xlsxreport  : model -> XLSX workbook
//   - internal/config      : YAML configuration
//   - pkg/utils            : logging and file management
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/fidji-converter/cmd"
)

func main() {
	cmd.Execute()
}
