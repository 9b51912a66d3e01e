package domain

type Product struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	Image       string  `json:"image" yaml:"image"`
	Scent       string  `json:"scent" yaml:"scent"`
	BurnTime    string  `json:"burnTime" yaml:"burnTime"`
}
