package model

// Category is the label attached to a categorized transaction.
type Category struct {
	Name string
}

// NewCategory creates a category with the given name.
func NewCategory(name string) Category {
	return Category{Name: name}
}
