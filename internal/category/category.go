package category

// CategoryItem is one listing category with the number of visible products in it.
type CategoryItem struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
