package models

import (
	"time"
)

type BudgetType string

const (
	BudgetTypeWeekly  BudgetType = "weekly"
	BudgetTypeMonthly BudgetType = "monthly"
	BudgetTypeAnnual  BudgetType = "annual"
	BudgetTypeGoal    BudgetType = "goal"
)

type Budget struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Name           string      `json:"name"`
	CategoryName   string      `json:"category_name"`
	BudgetType     BudgetType  `json:"budget_type"`
	Amount         float64     `json:"amount"`
	PeriodStart    string      `json:"period_start"`
	PeriodEnd      string      `json:"period_end"`
	AutoRenew      bool        `json:"auto_renew"`
	RolloverUnused bool        `json:"rollover_unused"`
	AlertThreshold float64     `json:"alert_threshold"`
	Notes          string      `json:"notes,omitempty"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Goal           *BudgetGoal `json:"budget_goal,omitempty"`
}

type BudgetGoal struct {
	ID           string  `json:"id"`
	BudgetID     string  `json:"budget_id"`
	GoalName     string  `json:"goal_name"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date,omitempty"`
}

// BudgetSpending is a budget annotated with values derived from transactions at read time.
type BudgetSpending struct {
	Budget
	SpentAmount     float64 `json:"spent_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	PercentageUsed  float64 `json:"percentage_used"`
	IsOverBudget    bool    `json:"is_over_budget"`
	IsNearLimit     bool    `json:"is_near_limit"`
}

type SpendingInsight struct {
	Category           string  `json:"category"`
	HistoricalAverage  float64 `json:"historical_average"`
	SuggestedBudget    float64 `json:"suggested_budget"`
	TransactionCount   int     `json:"transaction_count"`
	HighestTransaction float64 `json:"highest_transaction"`
}

type GoalRequest struct {
	GoalName     string  `json:"goal_name" binding:"required"`
	TargetAmount float64 `json:"target_amount" binding:"gte=0"`
	TargetDate   string  `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
}

type CreateBudgetRequest struct {
	Name           string       `json:"name" binding:"required"`
	CategoryName   string       `json:"category_name" binding:"required"`
	BudgetType     BudgetType   `json:"budget_type" binding:"omitempty,oneof=weekly monthly annual goal"`
	Amount         float64      `json:"amount" binding:"gt=0"`
	PeriodStart    string       `json:"period_start" binding:"required,datetime=2006-01-02"`
	PeriodEnd      string       `json:"period_end" binding:"required,datetime=2006-01-02"`
	AutoRenew      *bool        `json:"auto_renew"`
	RolloverUnused bool         `json:"rollover_unused"`
	AlertThreshold *float64     `json:"alert_threshold" binding:"omitempty,gte=0,lte=100"`
	Notes          string       `json:"notes"`
	GoalData       *GoalRequest `json:"goal_data"`
}

// UpdateBudgetRequest is a partial patch: only non-nil fields are written.
type UpdateBudgetRequest struct {
	Name           *string     `json:"name"`
	CategoryName   *string     `json:"category_name"`
	BudgetType     *BudgetType `json:"budget_type" binding:"omitempty,oneof=weekly monthly annual goal"`
	Amount         *float64    `json:"amount" binding:"omitempty,gt=0"`
	PeriodStart    *string     `json:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd      *string     `json:"period_end" binding:"omitempty,datetime=2006-01-02"`
	AutoRenew      *bool       `json:"auto_renew"`
	RolloverUnused *bool       `json:"rollover_unused"`
	AlertThreshold *float64    `json:"alert_threshold" binding:"omitempty,gte=0,lte=100"`
	Notes          *string     `json:"notes"`
}
