package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultAlertThreshold = 80.0
	periodOrderConstraint = "budgets_period_order"
)

const budgetColumns = `b.id, b.user_id, b.name, b.category_name, b.budget_type, b.amount,
	b.period_start::text, b.period_end::text, b.auto_renew, b.rollover_unused, b.alert_threshold,
	COALESCE(b.notes, ''), b.is_active, b.created_at, b.updated_at`

// BudgetService is the Budget Engine: custom categories, budgets with read-time spending,
// and spending insights.
type BudgetService struct {
	db  *sql.DB
	now func() time.Time
}

func NewBudgetService(db *sql.DB) *BudgetService {
	return &BudgetService{db: db, now: time.Now}
}

func scanBudget(row rowScanner, extra ...interface{}) (models.Budget, error) {
	var b models.Budget
	dest := []interface{}{
		&b.ID, &b.UserID, &b.Name, &b.CategoryName, &b.BudgetType, &b.Amount,
		&b.PeriodStart, &b.PeriodEnd, &b.AutoRenew, &b.RolloverUnused, &b.AlertThreshold,
		&b.Notes, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return b, err
}

func validatePeriod(start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return validationErrorf("period_start must be YYYY-MM-DD")
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return validationErrorf("period_end must be YYYY-MM-DD")
	}
	if e.Before(s) {
		return validationErrorf("period_end must not be before period_start")
	}
	return nil
}

func validBudgetType(t models.BudgetType) bool {
	switch t {
	case models.BudgetTypeWeekly, models.BudgetTypeMonthly, models.BudgetTypeAnnual, models.BudgetTypeGoal:
		return true
	}
	return false
}

// CreateBudget stores a budget and, for goal budgets with goal data, its goal in the same transaction.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.Budget, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CategoryName) == "" {
		return nil, validationErrorf("name and category_name are required")
	}
	if req.Amount <= 0 {
		return nil, validationErrorf("amount must be positive")
	}
	if err := validatePeriod(req.PeriodStart, req.PeriodEnd); err != nil {
		return nil, err
	}

	budgetType := req.BudgetType
	if budgetType == "" {
		budgetType = models.BudgetTypeMonthly
	}
	if !validBudgetType(budgetType) {
		return nil, validationErrorf("unknown budget_type %q", budgetType)
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	threshold := defaultAlertThreshold
	if req.AlertThreshold != nil {
		threshold = *req.AlertThreshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, validationErrorf("alert_threshold must be between 0 and 100")
	}

	var goal *models.GoalRequest
	if budgetType == models.BudgetTypeGoal && req.GoalData != nil {
		goal = req.GoalData
		if strings.TrimSpace(goal.GoalName) == "" {
			return nil, validationErrorf("goal_data.goal_name is required")
		}
		if goal.TargetDate != "" {
			if _, err := time.Parse(dateLayout, goal.TargetDate); err != nil {
				return nil, validationErrorf("goal_data.target_date must be YYYY-MM-DD")
			}
		}
	}

	var budget models.Budget
	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO budgets AS b (
				id, user_id, name, category_name, budget_type, amount, period_start, period_end,
				auto_renew, rollover_unused, alert_threshold, notes, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, NOW(), NOW())
			RETURNING ` + budgetColumns

		var err error
		budget, err = scanBudget(tx.QueryRowContext(ctx, query,
			uuid.New().String(),
			userID,
			req.Name,
			req.CategoryName,
			budgetType,
			req.Amount,
			req.PeriodStart,
			req.PeriodEnd,
			autoRenew,
			req.RolloverUnused,
			threshold,
			nullString(req.Notes),
		))
		if err != nil {
			return fmt.Errorf("failed to insert budget: %w", err)
		}

		if goal == nil {
			return nil
		}

		g := models.BudgetGoal{
			ID:           uuid.New().String(),
			BudgetID:     budget.ID,
			GoalName:     goal.GoalName,
			TargetAmount: goal.TargetAmount,
			TargetDate:   goal.TargetDate,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budget_goals (id, budget_id, goal_name, target_amount, target_date)
			VALUES ($1, $2, $3, $4, $5)
		`, g.ID, g.BudgetID, g.GoalName, g.TargetAmount, nullString(g.TargetDate)); err != nil {
			return fmt.Errorf("failed to insert budget goal: %w", err)
		}
		budget.Goal = &g
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogBudgetAction("budget created", budget.ID, userID)
	return &budget, nil
}

// ListBudgets returns the user's active budgets, newest first, with spending derived from
// positive-amount transactions on active accounts inside each budget's inclusive period.
func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]models.BudgetSpending, error) {
	query := `
		SELECT ` + budgetColumns + `,
			g.id, g.goal_name, g.target_amount, g.target_date::text,
			COALESCE((
				SELECT SUM(t.amount)
				FROM transactions t
				JOIN user_accounts a ON a.id = t.account_id
				WHERE a.user_id = b.user_id
				  AND a.is_active = TRUE
				  AND t.category = b.category_name
				  AND t.date BETWEEN b.period_start AND b.period_end
				  AND t.amount > 0
			), 0)
		FROM budgets b
		LEFT JOIN budget_goals g ON g.budget_id = b.id
		WHERE b.user_id = $1 AND b.is_active = TRUE
		ORDER BY b.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.BudgetSpending{}
	for rows.Next() {
		var (
			goalID, goalName, goalDate sql.NullString
			goalTarget                 sql.NullFloat64
			spent                      decimal.Decimal
		)
		b, err := scanBudget(rows, &goalID, &goalName, &goalTarget, &goalDate, &spent)
		if err != nil {
			return nil, err
		}
		if goalID.Valid {
			b.Goal = &models.BudgetGoal{
				ID:           goalID.String,
				BudgetID:     b.ID,
				GoalName:     goalName.String,
				TargetAmount: goalTarget.Float64,
				TargetDate:   goalDate.String,
			}
		}
		budgets = append(budgets, computeSpending(b, spent))
	}

	return budgets, rows.Err()
}

// computeSpending derives the read-time fields. A zero target reports 0% and is over budget
// as soon as anything is spent.
func computeSpending(b models.Budget, spent decimal.Decimal) models.BudgetSpending {
	target := decimal.NewFromFloat(b.Amount)
	remaining := target.Sub(spent)

	percentage := decimal.Zero
	if !target.IsZero() {
		percentage = spent.Div(target).Mul(decimal.NewFromInt(100))
	}

	return models.BudgetSpending{
		Budget:          b,
		SpentAmount:     spent.InexactFloat64(),
		RemainingAmount: remaining.InexactFloat64(),
		PercentageUsed:  percentage.Round(2).InexactFloat64(),
		IsOverBudget:    spent.GreaterThan(target),
		IsNearLimit:     percentage.GreaterThanOrEqual(decimal.NewFromFloat(b.AlertThreshold)),
	}
}

// UpdateBudget applies the non-nil fields of req to an active budget owned by userID.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, budgetID string, req models.UpdateBudgetRequest) (*models.Budget, error) {
	if _, err := uuid.Parse(budgetID); err != nil {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	var sets []string
	var args []interface{}
	set := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationErrorf("name must not be empty")
		}
		set("name", *req.Name)
	}
	if req.CategoryName != nil {
		if strings.TrimSpace(*req.CategoryName) == "" {
			return nil, validationErrorf("category_name must not be empty")
		}
		set("category_name", *req.CategoryName)
	}
	if req.BudgetType != nil {
		if !validBudgetType(*req.BudgetType) {
			return nil, validationErrorf("unknown budget_type %q", *req.BudgetType)
		}
		set("budget_type", *req.BudgetType)
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, validationErrorf("amount must be positive")
		}
		set("amount", *req.Amount)
	}
	if req.PeriodStart != nil {
		if _, err := time.Parse(dateLayout, *req.PeriodStart); err != nil {
			return nil, validationErrorf("period_start must be YYYY-MM-DD")
		}
		set("period_start", *req.PeriodStart)
	}
	if req.PeriodEnd != nil {
		if _, err := time.Parse(dateLayout, *req.PeriodEnd); err != nil {
			return nil, validationErrorf("period_end must be YYYY-MM-DD")
		}
		set("period_end", *req.PeriodEnd)
	}
	if req.PeriodStart != nil && req.PeriodEnd != nil {
		if err := validatePeriod(*req.PeriodStart, *req.PeriodEnd); err != nil {
			return nil, err
		}
	}
	if req.AutoRenew != nil {
		set("auto_renew", *req.AutoRenew)
	}
	if req.RolloverUnused != nil {
		set("rollover_unused", *req.RolloverUnused)
	}
	if req.AlertThreshold != nil {
		if *req.AlertThreshold < 0 || *req.AlertThreshold > 100 {
			return nil, validationErrorf("alert_threshold must be between 0 and 100")
		}
		set("alert_threshold", *req.AlertThreshold)
	}
	if req.Notes != nil {
		set("notes", nullString(*req.Notes))
	}

	if len(sets) == 0 {
		return nil, validationErrorf("no fields to update")
	}

	args = append(args, budgetID, userID)
	query := fmt.Sprintf(`
		UPDATE budgets b
		SET %s, updated_at = NOW()
		WHERE b.id = $%d AND b.user_id = $%d AND b.is_active = TRUE
		RETURNING %s
	`, strings.Join(sets, ", "), len(args)-1, len(args), budgetColumns)

	budget, err := scanBudget(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	// one bound alone is checked against the stored row by the schema
	if constraint, ok := violatedCheck(err); ok {
		if constraint == periodOrderConstraint {
			return nil, validationErrorf("period_end must not be before period_start")
		}
		return nil, validationErrorf("budget violates %s", constraint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	utils.LogBudgetAction("budget updated", budgetID, userID)
	return &budget, nil
}

// DeleteBudget soft-deletes an active budget owned by userID.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	if _, err := uuid.Parse(budgetID); err != nil {
		return fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budgets
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	utils.LogBudgetAction("budget deleted", budgetID, userID)
	return nil
}
