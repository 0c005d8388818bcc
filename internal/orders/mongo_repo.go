package orders

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	mongostore "github.com/angelmondragon/vitrine-backend/pkg/mongo"
)

type orderItemDocument struct {
	ID       int64                `bson:"id"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int                  `bson:"quantity"`
}

type customerDocument struct {
	Name           string `bson:"name"`
	Location       string `bson:"location"`
	DeliveryMethod string `bson:"delivery_method"`
	WhatsApp       string `bson:"whatsapp"`
	CPF            string `bson:"cpf"`
}

type orderDocument struct {
	ID        string               `bson:"_id"`
	SellerUID string               `bson:"seller_uid"`
	Items     []orderItemDocument  `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	Customer  customerDocument     `bson:"customer"`
	Status    string               `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
}

func toOrderDocument(o *models.Order) (orderDocument, error) {
	total, err := mongostore.ToDecimal128(o.Total)
	if err != nil {
		return orderDocument{}, err
	}
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		price, err := mongostore.ToDecimal128(item.Price)
		if err != nil {
			return orderDocument{}, fmt.Errorf("item %d: %w", item.ID, err)
		}
		items = append(items, orderItemDocument{ID: item.ID, Name: item.Name, Price: price, Quantity: item.Quantity})
	}
	return orderDocument{
		ID:        o.ID.String(),
		SellerUID: o.SellerUID,
		Items:     items,
		Total:     total,
		Customer: customerDocument{
			Name:           o.Customer.Name,
			Location:       o.Customer.Location,
			DeliveryMethod: o.Customer.DeliveryMethod.String(),
			WhatsApp:       o.Customer.WhatsApp,
			CPF:            o.Customer.CPF,
		},
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
	}, nil
}

// MongoRepository appends orders on the document backend.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(client *mongostore.Client) *MongoRepository {
	return &MongoRepository{coll: client.Collection(mongostore.OrdersCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, order *models.Order) error {
	if err := prepare(order); err != nil {
		return err
	}
	doc, err := toOrderDocument(order)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}
