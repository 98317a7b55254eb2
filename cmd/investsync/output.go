package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"

	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/syncer"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// printBatch renders rows as an aligned table or a JSON array of objects
func printBatch(w io.Writer, b domain.Batch, format string) error {
	if format == formatJSON {
		records := make([]map[string]any, 0, b.Len())
		for _, row := range b.Rows {
			rec := make(map[string]any, len(b.Columns))
			for i, col := range b.Columns {
				rec[col] = row[i]
			}
			records = append(records, rec)
		}
		return writeJSON(w, records)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(b.Columns, "\t"))
	for _, row := range b.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.DateTime)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// printReport renders a run summary followed by its items
func printReport(w io.Writer, r *syncer.Report, format string) error {
	if format == formatJSON {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "run %s (%s -> %s) in %s: fetched %d, appended %d, duplicates %d\n",
		r.RunID, r.Kind, r.Table, r.Duration().Round(time.Millisecond), r.Fetched, r.Appended, r.Duplicates)
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tOUTCOME\tFETCHED\tAPPENDED\tDETAIL")
	for _, it := range r.Items {
		detail := it.Error
		if it.TrackingID != "" {
			detail += " (tracking id " + it.TrackingID + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", it.Item, it.Outcome, it.Fetched, it.Appended, detail)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
