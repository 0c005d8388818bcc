package products

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	mongostore "github.com/angelmondragon/vitrine-backend/pkg/mongo"
)

type productDocument struct {
	ProductID   int64                `bson:"product_id"`
	SellerID    string               `bson:"seller_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Image       string               `bson:"image"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func (d productDocument) toModel() (models.Product, error) {
	sellerID, err := uuid.Parse(d.SellerID)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %d seller id %q: %w", d.ProductID, d.SellerID, err)
	}
	price, err := mongostore.FromDecimal128(d.Price)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:          d.ProductID,
		SellerID:    sellerID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// MongoRepository handles product reads on the document backend.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(client *mongostore.Client) *MongoRepository {
	return &MongoRepository{coll: client.Collection(mongostore.ProductsCollection)}
}

func (r *MongoRepository) ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "product_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"seller_id": sellerID.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *MongoRepository) FindBySellerAndID(ctx context.Context, sellerID uuid.UUID, id int64) (*models.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"seller_id": sellerID.String(), "product_id": id}).Decode(&doc)
	if err != nil {
		if mongostore.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	product, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &product, nil
}
