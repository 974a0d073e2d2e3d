package pipeline

import (
	"github.com/google/uuid"

	"certmail/internal"
)

func newReport() internal.JobReport {
	return internal.JobReport{RunID: uuid.NewString()}
}

// spreadsheet row number of the i-th record; row 1 holds the headers
func rowNumber(i int) int {
	return i + 2
}
