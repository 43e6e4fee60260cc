package rowstore

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// TransactionFilter is the composable query shape supported by the row
// store: equality on category/type, date and amount ranges, id membership,
// ordering and a row limit. The user-id equality predicate is applied by
// the repository, never by callers.
type TransactionFilter struct {
	Category  string
	Type      string
	StartDate *civil.Date
	EndDate   *civil.Date
	MinAmount *float64
	MaxAmount *float64
	IDs       []string
	OrderBy   string // one of "date", "amount", "created_at"
	Desc      bool
	Limit     int
}

// orderColumns whitelists sortable columns; identifiers cannot be query
// parameters, so anything else is rejected before SQL is assembled.
var orderColumns = map[string]string{
	"date":       "transaction_date",
	"amount":     "amount",
	"created_at": "created_ts",
}

// clauses renders the filter into a WHERE tail, an ORDER BY/LIMIT suffix
// and the matching query parameters. The caller prepends the user-id
// predicate, which is always condition one.
func (f TransactionFilter) clauses(userID string) (where string, suffix string, params []bigquery.QueryParameter, err error) {
	conds := []string{"user_id = @user_id"}
	params = append(params, bigquery.QueryParameter{Name: "user_id", Value: userID})

	if f.Category != "" {
		conds = append(conds, "category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.Type != "" {
		conds = append(conds, "transaction_type = @tx_type")
		params = append(params, bigquery.QueryParameter{Name: "tx_type", Value: f.Type})
	}
	if f.StartDate != nil {
		conds = append(conds, "transaction_date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: *f.StartDate})
	}
	if f.EndDate != nil {
		conds = append(conds, "transaction_date <= @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: *f.EndDate})
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount >= @min_amount")
		params = append(params, bigquery.QueryParameter{Name: "min_amount", Value: *f.MinAmount})
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount <= @max_amount")
		params = append(params, bigquery.QueryParameter{Name: "max_amount", Value: *f.MaxAmount})
	}
	if len(f.IDs) > 0 {
		conds = append(conds, "transaction_id IN UNNEST(@ids)")
		params = append(params, bigquery.QueryParameter{Name: "ids", Value: f.IDs})
	}

	where = "WHERE " + strings.Join(conds, "\n  AND ")

	if f.OrderBy != "" {
		col, ok := orderColumns[f.OrderBy]
		if !ok {
			return "", "", nil, fmt.Errorf("rowstore: cannot order by %q", f.OrderBy)
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		suffix = fmt.Sprintf("ORDER BY %s %s", col, dir)
	}
	if f.Limit > 0 {
		if suffix != "" {
			suffix += "\n"
		}
		suffix += fmt.Sprintf("LIMIT %d", f.Limit)
	}

	return where, suffix, params, nil
}
