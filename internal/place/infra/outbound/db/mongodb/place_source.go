package mongodb

import (
	"context"
	"fmt"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// PlaceSourceMongoDB sirve rankings de lugares desde MongoDB.
type PlaceSourceMongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewPlaceSourceMongoDB es el constructor de la fuente remota. No comprueba la
// conexión: el driver reconecta solo y el caché tolera los fallos.
func NewPlaceSourceMongoDB(client *mongo.Client, dbName string) *PlaceSourceMongoDB {
	return &PlaceSourceMongoDB{client: client, db: client.Database(dbName)}
}

// Ping comprueba que el primario responde.
func (r *PlaceSourceMongoDB) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoPlace struct {
	ID         string                 `bson:"_id"`
	Name       string                 `bson:"name"`
	Category   string                 `bson:"category"`
	City       string                 `bson:"city"`
	Country    string                 `bson:"country"`
	Popularity int64                  `bson:"popularity"`
	Rating     float64                `bson:"rating"`
	ImageURL   string                 `bson:"imageUrl"`
	Metadata   map[string]interface{} `bson:"metadata,omitempty"`
}

// TopN devuelve los 'limit' documentos de 'collection' con mayor valor en 'orderBy'.
func (r *PlaceSourceMongoDB) TopN(ctx context.Context, collection, orderBy string, limit int) ([]placeDomain.Place, error) {
	if limit <= 0 {
		return nil, placeDomain.ErrInvalidLimit
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: orderBy, Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(collection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", placeDomain.ErrSourceUnavailable, collection, err)
	}
	defer cursor.Close(ctx)

	var docs []mongoPlace
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", placeDomain.ErrSourceUnavailable, collection, err)
	}

	places := make([]placeDomain.Place, 0, len(docs))
	for _, d := range docs {
		places = append(places, toDomainPlace(d))
	}
	return places, nil
}

// --- Funciones de Mapeo ---

func toDomainPlace(d mongoPlace) placeDomain.Place {
	return placeDomain.Place{
		ID:         d.ID,
		Name:       d.Name,
		Category:   placeDomain.Category(d.Category),
		City:       d.City,
		Country:    d.Country,
		Popularity: d.Popularity,
		Rating:     d.Rating,
		ImageURL:   d.ImageURL,
		Metadata:   d.Metadata,
	}
}

func toMongoPlace(p placeDomain.Place) mongoPlace {
	return mongoPlace{
		ID:         p.ID,
		Name:       p.Name,
		Category:   string(p.Category),
		City:       p.City,
		Country:    p.Country,
		Popularity: p.Popularity,
		Rating:     p.Rating,
		ImageURL:   p.ImageURL,
		Metadata:   p.Metadata,
	}
}

// Verificación estática de la interfaz.
var _ placeDomain.PlaceSource = (*PlaceSourceMongoDB)(nil)
