package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/davicafu/toplaces/tests/mocks"
)

func TestPlaceMapping_RoundTrip(t *testing.T) {
	p := placeDomain.Place{
		ID:         "place-01",
		Name:       "Alhambra",
		Category:   placeDomain.CategoryDestination,
		City:       "Granada",
		Country:    "ES",
		Popularity: 980,
		Rating:     4.8,
		ImageURL:   "https://img.example/alhambra.jpg",
		Metadata:   map[string]interface{}{"unesco": true},
	}

	assert.Equal(t, p, toDomainPlace(toMongoPlace(p)))
}

func TestPlaceSourceMongoDB_TopNRejectsNonPositiveLimit(t *testing.T) {
	src := &PlaceSourceMongoDB{}

	_, err := src.TopN(context.Background(), "places", "popularity", 0)

	assert.ErrorIs(t, err, placeDomain.ErrInvalidLimit)
}

// setupMongoTestDB se conecta a MongoDB y devuelve una base de datos de usar y tirar.
func setupMongoTestDB(t *testing.T) (*mongo.Client, string) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI no está configurada, saltando test de integración con MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "toplaces_test_" + time.Now().Format("20060102150405")
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return client, dbName
}

func TestPlaceSourceMongoDB_TopN(t *testing.T) {
	client, dbName := setupMongoTestDB(t)
	ctx := context.Background()

	// Insertamos en orden inverso para comprobar que el orden lo decide la consulta.
	seed := mocks.SamplePlaces(5)
	docs := make([]interface{}, 0, len(seed))
	for i := len(seed) - 1; i >= 0; i-- {
		docs = append(docs, toMongoPlace(seed[i]))
	}
	_, err := client.Database(dbName).Collection("places").InsertMany(ctx, docs)
	require.NoError(t, err)

	src := NewPlaceSourceMongoDB(client, dbName)
	require.NoError(t, src.Ping(ctx))

	t.Run("devuelve los N más populares en orden descendente", func(t *testing.T) {
		places, err := src.TopN(ctx, "places", "popularity", 3)
		require.NoError(t, err)
		require.Len(t, places, 3)
		assert.Equal(t, []string{"place-01", "place-02", "place-03"},
			[]string{places[0].ID, places[1].ID, places[2].ID})
	})

	t.Run("colección vacía no es un error", func(t *testing.T) {
		places, err := src.TopN(ctx, "empty", "popularity", 3)
		require.NoError(t, err)
		assert.Empty(t, places)
	})
}
