package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/dashboard"
	"github.com/yeremiapane/restaurant-dashboard/utils"
	"github.com/yeremiapane/restaurant-dashboard/viewmodel"
)

const progressWidth = 10

// render menulis satu halaman board ke w
func render(w io.Writer, page viewmodel.Page, cfg viewmodel.Config, mode dashboard.Mode, now time.Time) error {
	fmt.Fprintf(w, "Orders [%s]  bucket=%s source=%s sort=%s", mode, cfg.StatusBucket, cfg.SourceFilter, cfg.SortKey)
	if cfg.SearchText != "" {
		fmt.Fprintf(w, " search=%q", cfg.SearchText)
	}
	fmt.Fprintln(w)

	if page.Total == 0 {
		fmt.Fprintln(w, "No orders.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tTABLE\tCUSTOMER\tSOURCE\tSTATUS\tPROGRESS\tIN STATUS\tTOKEN\tBILL\tTOTAL")
	for _, row := range page.Rows {
		o := row.Order
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.OrderNumber,
			orDash(o.Table()),
			orDash(o.Customer()),
			o.OrderSource,
			o.Status,
			progressBar(row.Progress()),
			row.TimeInStatus(now),
			tokenCell(row),
			billCell(row),
			utils.FormatCurrencyIDR(o.TotalAmount),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Page %d/%d  (%d orders, updated %s)\n",
		page.PageNumber, page.TotalPages, page.Total, now.Format("15:04:05"))
	return nil
}

func progressBar(pct int) string {
	filled := pct * progressWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + fmt.Sprintf("] %3d%%", pct)
}

func tokenCell(row viewmodel.Row) string {
	if row.KitchenToken == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", row.KitchenToken.TokenNumber, row.KitchenToken.Status)
}

func billCell(row viewmodel.Row) string {
	if row.Bill == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", row.Bill.BillNumber, row.Bill.PaymentStatus)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
