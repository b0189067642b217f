package mocks

import (
	"context"
	"fmt"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/stretchr/testify/mock"
)

// MockPlaceSource simula la fuente remota de lugares.
type MockPlaceSource struct {
	mock.Mock
}

var _ placeDomain.PlaceSource = (*MockPlaceSource)(nil)

func (m *MockPlaceSource) TopN(ctx context.Context, collection, orderBy string, limit int) ([]placeDomain.Place, error) {
	args := m.Called(ctx, collection, orderBy, limit)
	places, _ := args.Get(0).([]placeDomain.Place)
	return places, args.Error(1)
}

// SamplePlaces genera n lugares con popularidad descendente.
func SamplePlaces(n int) []placeDomain.Place {
	categories := []placeDomain.Category{
		placeDomain.CategoryDestination,
		placeDomain.CategoryHotel,
		placeDomain.CategoryRestaurant,
		placeDomain.CategoryTour,
	}

	places := make([]placeDomain.Place, 0, n)
	for i := 0; i < n; i++ {
		places = append(places, placeDomain.Place{
			ID:         fmt.Sprintf("place-%02d", i+1),
			Name:       fmt.Sprintf("Lugar %d", i+1),
			Category:   categories[i%len(categories)],
			City:       "Sevilla",
			Country:    "ES",
			Popularity: int64(1000 - i*10),
			Rating:     4.5,
		})
	}
	return places
}
