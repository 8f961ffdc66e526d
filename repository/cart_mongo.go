package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"marketplace/models"
)

// MongoCartRepository persists carts in the "carts" collection, keyed by
// user id. Empty carts are the caller's concern; this layer just stores
// what it is given.
type MongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection("carts")}
}

var _ CartRepository = (*MongoCartRepository)(nil)

type cartItemDoc struct {
	ProductID       string               `bson:"product_id"`
	ProductName     string               `bson:"product_name"`
	ProductPrice    primitive.Decimal128 `bson:"product_price"`
	ProductImageURL string               `bson:"product_image_url"`
	Quantity        int                  `bson:"quantity"`
}

type cartDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Items     []cartItemDoc      `bson:"items"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func cartItemsToDocs(items []models.CartItem) ([]cartItemDoc, error) {
	docs := make([]cartItemDoc, len(items))
	for i, item := range items {
		price, err := toDecimal128(item.ProductPrice)
		if err != nil {
			return nil, err
		}
		docs[i] = cartItemDoc{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductPrice:    price,
			ProductImageURL: item.ProductImageURL,
			Quantity:        item.Quantity,
		}
	}
	return docs, nil
}

func cartItemsFromDocs(docs []cartItemDoc) ([]models.CartItem, error) {
	items := make([]models.CartItem, len(docs))
	for i, doc := range docs {
		price, err := fromDecimal128(doc.ProductPrice)
		if err != nil {
			return nil, err
		}
		items[i] = models.CartItem{
			ProductID:       doc.ProductID,
			ProductName:     doc.ProductName,
			ProductPrice:    price,
			ProductImageURL: doc.ProductImageURL,
			Quantity:        doc.Quantity,
		}
	}
	return items, nil
}

func (d *cartDoc) toModel() (*models.Cart, error) {
	items, err := cartItemsFromDocs(d.Items)
	if err != nil {
		return nil, err
	}
	return &models.Cart{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Items:     items,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// FindByUserID returns (nil, nil) when the user has no persisted cart.
func (r *MongoCartRepository) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc cartDoc
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

// Save inserts carts without an id and replaces the rest. Concurrent
// saves of the same cart are last-write-wins.
func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	items, err := cartItemsToDocs(cart.Items)
	if err != nil {
		return nil, err
	}
	doc := cartDoc{
		UserID:    cart.UserID,
		Items:     items,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if cart.ID == "" {
		result, err := r.collection.InsertOne(ctx, doc)
		if err != nil {
			return nil, err
		}
		cart.ID = result.InsertedID.(primitive.ObjectID).Hex()
		return cart, nil
	}

	oid, err := objectIDFromHex(cart.ID)
	if err != nil {
		return nil, err
	}
	doc.ID = oid
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteByUserID drops the user's cart; deleting a missing cart is fine.
func (r *MongoCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
