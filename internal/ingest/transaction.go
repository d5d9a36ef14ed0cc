package ingest

import "github.com/kailas-cloud/aptdex/internal/domain/apartment"

// Transactions maps transaction rows. Rows are never dropped; a malformed
// unit size leaves the size empty.
func (m *Mapper) Transactions(rows []Row) ([]apartment.Transaction, Report) {
	rep := Report{Read: len(rows)}
	out := make([]apartment.Transaction, 0, len(rows))
	for i, r := range rows {
		c := cellReader{row: r, line: i, log: m.log}
		tx := apartment.Transaction{SizePyeong: c.floatCell(colTxSize)}
		tx.District, _ = r.first(colTxDistrict)
		tx.Neighborhood, _ = r.first(colTxNeighborhood)
		tx.Name, _ = r.first(colTxName)
		tx.Price, _ = r.first(colTxPrice)
		tx.ReferenceDate, _ = r.first(colTxDate)
		rep.CoercionFailures += c.failures
		out = append(out, tx)
	}
	rep.Kept = len(out)
	return out, rep
}
