package domain

// Category clasifica los lugares que muestra la app.
type Category string

const (
	CategoryDestination Category = "destination"
	CategoryHotel       Category = "hotel"
	CategoryRestaurant  Category = "restaurant"
	CategoryTour        Category = "tour"
)

// Place representa un lugar (destino, hotel, restaurante o tour) tal y como lo
// guarda el backend documental. El caché lo transporta sin interpretarlo.
type Place struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Category   Category               `json:"category"`
	City       string                 `json:"city,omitempty"`
	Country    string                 `json:"country,omitempty"`
	Popularity int64                  `json:"popularity"`
	Rating     float64                `json:"rating"`
	ImageURL   string                 `json:"image_url,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// IsKnownCategory indica si la categoría es una de las que soporta la app.
func (c Category) IsKnownCategory() bool {
	switch c {
	case CategoryDestination, CategoryHotel, CategoryRestaurant, CategoryTour:
		return true
	}
	return false
}
