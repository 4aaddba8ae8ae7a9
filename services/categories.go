package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/LovationAdmin/superapp-api/models"

	"github.com/google/uuid"
)

// CreateCategory adds a custom category. Names are unique per user.
func (s *BudgetService) CreateCategory(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.CustomCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationErrorf("category name is required")
	}

	color := req.Color
	if color == "" {
		color = defaultCategoryColor
	}
	icon := req.Icon
	if icon == "" {
		icon = defaultCategoryIcon
	}

	query := `
		INSERT INTO custom_categories (
			id, user_id, name, description, color, icon, is_income, parent_category, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW())
		RETURNING id, user_id, name, COALESCE(description, ''), color, icon, is_income,
			COALESCE(parent_category, ''), is_active, created_at
	`

	var c models.CustomCategory
	err := s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		userID,
		name,
		nullString(req.Description),
		color,
		icon,
		req.IsIncome,
		nullString(req.ParentCategory),
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.IsIncome, &c.ParentCategory, &c.IsActive, &c.CreatedAt)

	if isUniqueViolation(err) {
		return nil, fmt.Errorf("category %q already exists: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

// ListCategories returns the labels seen on the user's transactions plus the user's active
// custom categories.
func (s *BudgetService) ListCategories(ctx context.Context, userID string) (*models.CategoryList, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT t.category
		FROM transactions t
		JOIN user_accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.category IS NOT NULL AND t.category <> ''
		ORDER BY t.category
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := &models.CategoryList{
		Predefined: []models.CategoryView{},
		Custom:     []models.CategoryView{},
	}

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		list.Predefined = append(list.Predefined, models.CategoryView{
			Name:  name,
			Type:  models.CategoryTypePredefined,
			Color: CategoryColor(name),
			Icon:  CategoryIcon(name),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	customRows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), color, icon, is_income, COALESCE(parent_category, '')
		FROM custom_categories
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer customRows.Close()

	for customRows.Next() {
		v := models.CategoryView{Type: models.CategoryTypeCustom}
		if err := customRows.Scan(&v.ID, &v.Name, &v.Description, &v.Color, &v.Icon, &v.IsIncome, &v.ParentCategory); err != nil {
			return nil, err
		}
		list.Custom = append(list.Custom, v)
	}
	if err := customRows.Err(); err != nil {
		return nil, err
	}

	list.All = make([]models.CategoryView, 0, len(list.Predefined)+len(list.Custom))
	list.All = append(list.All, list.Predefined...)
	list.All = append(list.All, list.Custom...)
	return list, nil
}
