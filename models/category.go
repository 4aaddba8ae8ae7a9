package models

import "time"

const (
	CategoryTypePredefined = "predefined"
	CategoryTypeCustom     = "custom"
)

type CustomCategory struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Color          string    `json:"color"`
	Icon           string    `json:"icon"`
	IsIncome       bool      `json:"is_income"`
	ParentCategory string    `json:"parent_category,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryView is the display shape shared by predefined and custom categories.
type CategoryView struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	IsIncome       bool   `json:"is_income"`
	Color          string `json:"color"`
	Icon           string `json:"icon"`
	ParentCategory string `json:"parent_category,omitempty"`
}

type CategoryList struct {
	Predefined []CategoryView `json:"predefined"`
	Custom     []CategoryView `json:"custom"`
	All        []CategoryView `json:"all"`
}

type CreateCategoryRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	Color          string `json:"color" binding:"omitempty,hexcolor"`
	Icon           string `json:"icon"`
	IsIncome       bool   `json:"isIncome"`
	ParentCategory string `json:"parentCategory"`
}
