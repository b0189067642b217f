package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_IsKnownCategory(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		expected bool
	}{
		{name: "destino", category: CategoryDestination, expected: true},
		{name: "hotel", category: CategoryHotel, expected: true},
		{name: "restaurante", category: CategoryRestaurant, expected: true},
		{name: "tour", category: CategoryTour, expected: true},
		{name: "desconocida", category: Category("museum"), expected: false},
		{name: "vacía", category: Category(""), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.IsKnownCategory())
		})
	}
}

func TestInvalidatesRanking(t *testing.T) {
	assert.True(t, InvalidatesRanking(PlaceUpdated))
	assert.True(t, InvalidatesRanking(PlaceDeleted))
	assert.True(t, InvalidatesRanking(RankingInvalidated))
	assert.False(t, InvalidatesRanking("place.viewed"))
}
