package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Document file formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatOf picks the document format from a file extension. Anything that
// is not .yaml or .yml is JSON.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// readDocument reads a flow document from path, or stdin when path is "-".
func readDocument(path string) (*document.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	if formatOf(path) == formatYAML {
		return document.UnmarshalYAML(data)
	}
	return document.Unmarshal(data)
}

// encodeDocument encodes d in format.
func encodeDocument(d *document.Document, format string) ([]byte, error) {
	switch format {
	case formatYAML:
		return document.MarshalYAML(d)
	case formatJSON, "":
		data, err := document.Marshal(d)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode flow document")
		}
		return append(data, '\n'), nil
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format %q (want json or yaml)", format)
	}
}

// writeOutput writes data to path, or stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
