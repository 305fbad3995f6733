package metricstore

import (
	"fmt"
	"io"

	"github.com/huangsam/finmap/schema"
)

// PrintStatus prints metrics store status information.
func PrintStatus(w io.Writer, status schema.MetricsStatus) {
	_, _ = fmt.Fprintf(w, "Metrics Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.Version)
	_, _ = fmt.Fprintf(w, "Total Records: %d\n", status.TotalRecords)
	_, _ = fmt.Fprintf(w, "Regions: %d\n", status.Regions)
	if status.MinYear != nil && status.MaxYear != nil {
		_, _ = fmt.Fprintf(w, "Years: %d-%d\n", *status.MinYear, *status.MaxYear)
	}
}
