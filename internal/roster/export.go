package roster

import (
	"encoding/csv"
	"fmt"
	"io"
)

var exportHeader = []string{"Jersey #", "First Name", "Last Name", "DOB", "School", "Position", "Notes"}

// ExportCSV writes the roster as RFC-4180 CSV. notes maps player ID to the
// flattened notes string; players without an entry export an empty Notes
// column.
func ExportCSV(w io.Writer, players []*Player, notes map[string]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, p := range players {
		row := []string{p.Jersey, p.FirstName, p.LastName, p.DOB, p.School, p.Position, notes[p.ID]}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export row for %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
