package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sepsiswatch/platform/pkg/clinical/features"
	"github.com/sepsiswatch/platform/pkg/cohort"
)

// datasetColumns is the on-disk column order: patient id, the 13 raw fields
// in schema order, then the label.
func datasetColumns() []string {
	cols := []string{"PatientID"}
	cols = append(cols, features.BaseFeatureNames()...)
	return append(cols, "SepsisLabel")
}

// WriteCohortCSV persists a labelled cohort atomically. Rows are written in
// slice order, which the generator guarantees is ascending PatientID.
func WriteCohortCSV(path string, rows cohort.Cohort) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(datasetColumns()); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}
	for _, row := range rows {
		record := make([]string, 0, 15)
		record = append(record, strconv.Itoa(row.PatientID))
		for _, name := range features.BaseFeatureNames() {
			value, _ := row.Raw.Value(name)
			record = append(record, strconv.FormatFloat(value, 'g', -1, 64))
		}
		record = append(record, strconv.Itoa(row.SepsisLabel))
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%w: %v", ErrArtifactIO, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}

	return WriteAtomic(path, buf.Bytes())
}

// ReadCohortCSV loads a previously persisted cohort.
func ReadCohortCSV(path string) (cohort.Cohort, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	expected := datasetColumns()
	if len(header) != len(expected) {
		return nil, fmt.Errorf("dataset has %d columns, expected %d", len(header), len(expected))
	}
	for i, col := range expected {
		if header[i] != col {
			return nil, fmt.Errorf("dataset column %d is %q, expected %q", i, header[i], col)
		}
	}

	var rows cohort.Cohort
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (cohort.Row, error) {
	id, err := strconv.Atoi(record[0])
	if err != nil {
		return cohort.Row{}, fmt.Errorf("bad PatientID %q: %w", record[0], err)
	}

	values := make([]float64, len(record)-2)
	for i := 1; i < len(record)-1; i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return cohort.Row{}, fmt.Errorf("bad value %q in row %d: %w", record[i], id, err)
		}
		values[i-1] = v
	}

	label, err := strconv.Atoi(record[len(record)-1])
	if err != nil {
		return cohort.Row{}, fmt.Errorf("bad SepsisLabel %q in row %d: %w", record[len(record)-1], id, err)
	}

	return cohort.Row{
		PatientID: id,
		Raw: features.RawPatientRecord{
			Age:        values[0],
			Gender:     values[1],
			HR:         values[2],
			O2Sat:      values[3],
			Temp:       values[4],
			SBP:        values[5],
			MAP:        values[6],
			DBP:        values[7],
			Resp:       values[8],
			WBC:        values[9],
			Platelets:  values[10],
			Creatinine: values[11],
			Lactate:    values[12],
		},
		SepsisLabel: label,
	}, nil
}
