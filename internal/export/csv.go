package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/evcraddock/gatepass/internal/visit"
)

// WriteCSV writes one header line and one line per visit. Every field is
// quoted so spreadsheet tools never reinterpret names or notes.
func WriteCSV(w io.Writer, visits []*visit.Visit) error {
	bw := bufio.NewWriter(w)
	if err := writeCSVLine(bw, Columns); err != nil {
		return err
	}
	for _, v := range visits {
		if err := writeCSVLine(bw, Row(v)); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// csvEscaper folds line endings inside a field to \n, which CSV readers
// return unchanged, and doubles quotes.
var csvEscaper = strings.NewReplacer("\r\n", "\n", "\r", "\n", `"`, `""`)

func writeCSVLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
		if _, err := w.WriteString(`"` + csvEscaper.Replace(f) + `"`); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
