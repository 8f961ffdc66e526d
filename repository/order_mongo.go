package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace/models"
)

// MongoOrderRepository persists orders in the "orders" collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

var _ OrderRepository = (*MongoOrderRepository)(nil)

type orderDoc struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty"`
	UserID              string               `bson:"user_id"`
	UserEmail           string               `bson:"user_email"`
	CustomerName        string               `bson:"customer_name"`
	ShippingAddress     string               `bson:"shipping_address"`
	PhoneNumber         string               `bson:"phone_number"`
	Items               []cartItemDoc        `bson:"items"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	Status              string               `bson:"status"`
	PaypalTransactionID string               `bson:"paypal_transaction_id,omitempty"`
	PaypalPaymentID     string               `bson:"paypal_payment_id,omitempty"`
	CreatedAt           time.Time            `bson:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at"`
	ShippedAt           *time.Time           `bson:"shipped_at,omitempty"`
	DeliveredAt         *time.Time           `bson:"delivered_at,omitempty"`
	Notes               string               `bson:"notes,omitempty"`
}

func (d *orderDoc) toModel() (*models.Order, error) {
	items, err := cartItemsFromDocs(d.Items)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &models.Order{
		ID:                  d.ID.Hex(),
		UserID:              d.UserID,
		UserEmail:           d.UserEmail,
		CustomerName:        d.CustomerName,
		ShippingAddress:     d.ShippingAddress,
		PhoneNumber:         d.PhoneNumber,
		Items:               items,
		TotalAmount:         total,
		Status:              models.OrderStatus(d.Status),
		PaypalTransactionID: d.PaypalTransactionID,
		PaypalPaymentID:     d.PaypalPaymentID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		ShippedAt:           d.ShippedAt,
		DeliveredAt:         d.DeliveredAt,
		Notes:               d.Notes,
	}, nil
}

func orderToDoc(o *models.Order) (*orderDoc, error) {
	items, err := cartItemsToDocs(o.Items)
	if err != nil {
		return nil, err
	}
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return nil, err
	}
	doc := &orderDoc{
		UserID:              o.UserID,
		UserEmail:           o.UserEmail,
		CustomerName:        o.CustomerName,
		ShippingAddress:     o.ShippingAddress,
		PhoneNumber:         o.PhoneNumber,
		Items:               items,
		TotalAmount:         total,
		Status:              string(o.Status),
		PaypalTransactionID: o.PaypalTransactionID,
		PaypalPaymentID:     o.PaypalPaymentID,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		ShippedAt:           o.ShippedAt,
		DeliveredAt:         o.DeliveredAt,
		Notes:               o.Notes,
	}
	if o.ID != "" {
		oid, err := objectIDFromHex(o.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

// FindByID returns (nil, nil) when the id does not resolve.
func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc orderDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	doc, err := orderToDoc(order)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	order.ID = result.InsertedID.(primitive.ObjectID).Hex()
	return order, nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	doc, err := orderToDoc(order)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc); err != nil {
		return nil, err
	}
	return order, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(newestFirst)
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoOrderRepository) FindByUserIDPage(ctx context.Context, userID string, page, size int) ([]models.Order, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page) * int64(size)).
		SetLimit(int64(size))
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoOrderRepository) FindAllPage(ctx context.Context, page, size int) ([]models.Order, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page) * int64(size)).
		SetLimit(int64(size))
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoOrderRepository) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	opts := options.Find().SetSort(newestFirst)
	return r.find(ctx, bson.M{"status": string(status)}, opts)
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		o, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, cursor.Err()
}

func (r *MongoOrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{"status": string(status)})
}
