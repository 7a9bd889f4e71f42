package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"tagaudit/internal/posts"
	"tagaudit/internal/tags"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteRecords writes records as CSV rows under posts.CsvHeader.
func WriteRecords(w io.Writer, records []posts.Record) error {
	out := csv.NewWriter(w)
	err := out.Write(posts.CsvHeader)
	if err != nil {
		return err
	}
	for i, r := range records {
		err = out.Write(r.Row(i))
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteMatrix writes the matrix as CSV, the first row and column hold the
// labels.
func WriteMatrix(w io.Writer, matrix tags.Matrix) error {
	out := csv.NewWriter(w)
	err := out.Write(append([]string{""}, matrix.Labels...))
	if err != nil {
		return err
	}
	for i, label := range matrix.Labels {
		row := make([]string, 0, len(matrix.Labels)+1)
		row = append(row, label)
		for _, cell := range matrix.Cells[i] {
			row = append(row, strconv.FormatInt(cell, 10))
		}
		err = out.Write(row)
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteEdges writes the weighted edge list of the matrix for graph tools.
func WriteEdges(w io.Writer, matrix tags.Matrix) error {
	out := csv.NewWriter(w)
	err := out.Write([]string{"source", "target", "weight"})
	if err != nil {
		return err
	}
	for _, e := range matrix.Edges() {
		err = out.Write([]string{
			matrix.Labels[e.I],
			matrix.Labels[e.J],
			strconv.FormatInt(e.Weight, 10),
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderMatrix prints the matrix as a table.
func RenderMatrix(w io.Writer, matrix tags.Matrix) {
	t := newTable(w)

	header := table.Row{""}
	for _, label := range matrix.Labels {
		header = append(header, label)
	}
	t.AppendHeader(header)

	for i, label := range matrix.Labels {
		row := table.Row{label}
		for _, cell := range matrix.Cells[i] {
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	t.Render()
}

// RenderSimilar prints near-duplicate tag suggestions.
func RenderSimilar(w io.Writer, similar []tags.Similarity) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Tag", "Similar tag", "Score"})
	for _, s := range similar {
		t.AppendRow(table.Row{s.A, s.B, strconv.FormatFloat(s.Score, 'f', 3, 64)})
	}
	t.Render()
}
