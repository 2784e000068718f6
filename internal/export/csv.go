package export

import (
	"encoding/csv"
	"io"
)

// BOM lets Excel on Windows detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the register with a BOM and header row.
func WriteCSV(w io.Writer, r *Register) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(r.rows()); err != nil {
		return err
	}
	return cw.Error()
}
