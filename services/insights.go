package services

import (
	"context"
	"sort"

	"github.com/LovationAdmin/superapp-api/models"

	"github.com/shopspring/decimal"
)

var suggestionBuffer = decimal.RequireFromString("1.10")

type categoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
	Highest  decimal.Decimal
}

// GetSpendingInsights summarizes expenses of the trailing months per category and suggests
// a budget with a 10% buffer.
func (s *BudgetService) GetSpendingInsights(ctx context.Context, userID string, months int) ([]models.SpendingInsight, error) {
	if months <= 0 {
		return nil, validationErrorf("months must be a positive integer")
	}

	since := s.now().AddDate(0, -months, 0).Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(t.category, ''), 'Other'), SUM(t.amount), COUNT(*), MAX(t.amount)
		FROM transactions t
		JOIN user_accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND a.is_active = TRUE AND t.date >= $2 AND t.amount > 0
		GROUP BY 1
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []categoryTotal
	for rows.Next() {
		var ct categoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count, &ct.Highest); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summarizeSpending(totals, months), nil
}

func summarizeSpending(totals []categoryTotal, months int) []models.SpendingInsight {
	divisor := decimal.NewFromInt(int64(months))

	type ranked struct {
		avg     decimal.Decimal
		insight models.SpendingInsight
	}
	items := make([]ranked, 0, len(totals))

	for _, ct := range totals {
		avg := ct.Total.Div(divisor)
		items = append(items, ranked{
			avg: avg,
			insight: models.SpendingInsight{
				Category:           ct.Category,
				HistoricalAverage:  avg.Round(2).InexactFloat64(),
				SuggestedBudget:    avg.Mul(suggestionBuffer).Ceil().InexactFloat64(),
				TransactionCount:   ct.Count,
				HighestTransaction: ct.Highest.InexactFloat64(),
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].avg.Equal(items[j].avg) {
			return items[i].avg.GreaterThan(items[j].avg)
		}
		return items[i].insight.Category < items[j].insight.Category
	})

	insights := make([]models.SpendingInsight, len(items))
	for i, it := range items {
		insights[i] = it.insight
	}
	return insights
}
