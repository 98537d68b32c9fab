/*
report.go - Statement report formatting

PURPOSE:
  Maps the engine's statement output into the shape the report screen
  prints and exports: display names instead of ids, human kind labels,
  column totals, and a flag for balances that dipped below zero. Pure
  presentation - every number here was computed by the engine.

SEE ALSO:
  - ledger/statement.go: Produces the rows consumed here
*/
package fuel

import "github.com/warp/stock-ledger/ledger"

// =============================================================================
// REPORT - Display shape for a running-balance statement
// =============================================================================

type Report struct {
	Title    string
	Location string // "All locations" when unfiltered
	Resource string
	Unit     ledger.Unit
	Period   string

	Rows []ReportRow

	TotalInbound  string
	TotalOutbound string
	Closing       string

	// NegativeObserved mirrors the engine's flag so the screen can warn
	// the operator about entries recorded ahead of their paperwork.
	NegativeObserved bool
}

type ReportRow struct {
	EventID  string
	Date     string
	Kind     string
	Label    string
	Inbound  string
	Outbound string
	Balance  string
	Opening  bool
}

// kindLabels maps line kinds to column labels.
var kindLabels = map[ledger.EventKind]string{
	ledger.KindOpeningBalance: "Opening balance",
	ledger.KindSupply:         "Supply",
	ledger.KindTransferOut:    "Transfer out",
	ledger.KindTransferIn:     "Transfer in",
	ledger.KindDisbursement:   "Disbursement",
}

// BuildReport assembles the display report for a computed statement.
func BuildReport(catalog *ledger.Catalog, f ledger.Filter, res ledger.StatementResult) Report {
	report := Report{
		Title:            "Stock movement statement",
		Location:         "All locations",
		Resource:         "All resources",
		NegativeObserved: res.NegativeObserved,
		Closing:          res.Closing.String(),
	}

	if f.Location != nil {
		report.Location = catalog.LocationName(*f.Location)
	}
	if f.Resource != nil {
		report.Resource = catalog.ResourceTypeName(*f.Resource)
		report.Unit = catalog.ResourceUnit(*f.Resource)
	}
	report.Period = periodLabel(f)

	var totalIn, totalOut ledger.Quantity
	report.Rows = make([]ReportRow, 0, len(res.Rows))
	for _, row := range res.Rows {
		totalIn = totalIn.Add(row.Inbound)
		totalOut = totalOut.Add(row.Outbound)

		kind := kindLabels[row.Kind]
		if kind == "" {
			kind = string(row.Kind)
		}
		report.Rows = append(report.Rows, ReportRow{
			EventID:  string(row.EventID),
			Date:     row.Date.String(),
			Kind:     kind,
			Label:    row.Label,
			Inbound:  blankIfZero(row.Inbound),
			Outbound: blankIfZero(row.Outbound),
			Balance:  row.Balance.String(),
			Opening:  row.Opening,
		})
	}
	report.TotalInbound = totalIn.String()
	report.TotalOutbound = totalOut.String()

	return report
}

// blankIfZero keeps the printed grid readable: a supply row shows nothing
// in the outbound column rather than a 0.
func blankIfZero(q ledger.Quantity) string {
	if q.IsZero() {
		return ""
	}
	return q.String()
}

func periodLabel(f ledger.Filter) string {
	switch {
	case f.From != nil && f.To != nil:
		return f.From.String() + " to " + f.To.String()
	case f.From != nil:
		return "from " + f.From.String()
	case f.To != nil:
		return "until " + f.To.String()
	default:
		return "all dates"
	}
}
