package model

// Category groups tasks under a colored label
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#4ECDC4"
