package sellers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	mongostore "github.com/angelmondragon/vitrine-backend/pkg/mongo"
)

type sellerDocument struct {
	ID             string    `bson:"_id"`
	UID            string    `bson:"uid"`
	Email          string    `bson:"email"`
	StoreName      string    `bson:"store_name"`
	Slug           string    `bson:"slug"`
	Active         bool      `bson:"active"`
	PixNumber      *string   `bson:"pix_number,omitempty"`
	WhatsAppNumber *string   `bson:"whatsapp_number,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toSellerDocument(m *models.Seller) sellerDocument {
	return sellerDocument{
		ID:             m.ID.String(),
		UID:            m.UID,
		Email:          m.Email,
		StoreName:      m.StoreName,
		Slug:           m.Slug,
		Active:         m.Active,
		PixNumber:      m.PixNumber,
		WhatsAppNumber: m.WhatsAppNumber,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (d sellerDocument) toModel() (*models.Seller, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("seller document id %q: %w", d.ID, err)
	}
	return &models.Seller{
		ID:             id,
		UID:            d.UID,
		Email:          d.Email,
		StoreName:      d.StoreName,
		Slug:           d.Slug,
		Active:         d.Active,
		PixNumber:      d.PixNumber,
		WhatsAppNumber: d.WhatsAppNumber,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

// MongoRepository handles seller persistence on the document backend.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(client *mongostore.Client) *MongoRepository {
	return &MongoRepository{coll: client.Collection(mongostore.SellersCollection)}
}

func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoRepository) FindByUID(ctx context.Context, uid string) (*models.Seller, error) {
	return r.findOne(ctx, bson.M{"uid": uid})
}

func (r *MongoRepository) Create(ctx context.Context, seller *models.Seller) error {
	if seller == nil {
		return fmt.Errorf("seller is required")
	}
	if _, err := r.coll.InsertOne(ctx, toSellerDocument(seller)); err != nil {
		if mongostore.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %v", ErrSlugTaken, err)
		}
		return err
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Seller, error) {
	var doc sellerDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongostore.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel()
}
