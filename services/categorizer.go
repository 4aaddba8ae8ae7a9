package services

// --- STATIC DICTIONARY: provider primary category -> internal label ---
var providerCategoryMap = map[string]string{
	"Food and Drink":            "Food & Dining",
	"Shops":                     "Shopping",
	"Recreation":                "Entertainment",
	"Transportation":            "Transportation",
	"Healthcare":                "Healthcare",
	"Service":                   "Services",
	"Community":                 "Community",
	"Government and Non-Profit": "Government",
	"Travel":                    "Travel",
	"Bank Fees":                 "Fees",
	"Interest":                  "Income",
	"Deposit":                   "Income",
	"Payroll":                   "Income",
	"Transfer":                  "Transfer",
}

const (
	CategoryOther        = "Other"
	defaultCategoryColor = "#3182ce"
	defaultCategoryIcon  = "tag"
)

var categoryColors = map[string]string{
	"Food & Dining":  "#e53e3e",
	"Shopping":       "#d69e2e",
	"Transportation": "#3182ce",
	"Entertainment":  "#805ad5",
	"Healthcare":     "#38a169",
	"Services":       "#319795",
	"Income":         "#48bb78",
	"Transfer":       "#718096",
	"Fees":           "#f56565",
	"Other":          "#a0aec0",
}

var categoryIcons = map[string]string{
	"Food & Dining":  "utensils",
	"Shopping":       "shopping-bag",
	"Transportation": "car",
	"Entertainment":  "film",
	"Healthcare":     "heart",
	"Services":       "wrench",
	"Income":         "dollar-sign",
	"Transfer":       "exchange-alt",
	"Fees":           "exclamation-triangle",
	"Other":          "tag",
}

// MapProviderCategory maps a provider category path (most general first) to an internal label.
// It never fails: empty or unknown paths map to "Other".
func MapProviderCategory(path []string) string {
	if len(path) == 0 {
		return CategoryOther
	}
	if category, ok := providerCategoryMap[path[0]]; ok {
		return category
	}
	return CategoryOther
}

// ProviderSubcategory returns the most specific raw provider label, or "".
func ProviderSubcategory(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func CategoryColor(category string) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return defaultCategoryColor
}

func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return defaultCategoryIcon
}
