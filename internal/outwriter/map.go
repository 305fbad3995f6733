package outwriter

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/finmap/schema"
)

//go:embed templates/map.html.tmpl
var mapTemplateText string

var mapTemplate = template.Must(template.New("map").Parse(mapTemplateText))

type mapPage struct {
	Title string
	Doc   *schema.MapDocument // marshaled to JSON by html/template inside <script>
}

// RenderMap writes the self-contained HTML page for doc to w.
func RenderMap(w io.Writer, doc *schema.MapDocument) error {
	if doc == nil {
		return fmt.Errorf("map document is nil")
	}
	return mapTemplate.Execute(w, mapPage{Title: doc.Title, Doc: doc})
}

// WriteMap renders doc in memory and replaces path atomically.
// Any filesystem failure is reported as a *schema.WriteError and leaves no partial file.
func WriteMap(doc *schema.MapDocument, path string) error {
	var buf bytes.Buffer
	if err := RenderMap(&buf, doc); err != nil {
		return &schema.RenderError{Reason: "map template failed", Err: err}
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".finmap-*.tmp")
	if err != nil {
		return &schema.WriteError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &schema.WriteError{Path: path, Err: err}
	}
	if err = tmp.Chmod(0o644); err != nil {
		return &schema.WriteError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &schema.WriteError{Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &schema.WriteError{Path: path, Err: err}
	}
	return nil
}
