package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"marketplace/models"
)

// MongoProductRepository persists products in the "products" collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

var _ ProductRepository = (*MongoProductRepository)(nil)

type productDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Name           string               `bson:"name"`
	Price          primitive.Decimal128 `bson:"price"`
	Description    string               `bson:"description"`
	ImageURL       string               `bson:"image_url"`
	PaypalButtonID string               `bson:"paypal_button_id,omitempty"`
}

func (d *productDoc) toModel() (*models.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &models.Product{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Price:          price,
		Description:    d.Description,
		ImageURL:       d.ImageURL,
		PaypalButtonID: d.PaypalButtonID,
	}, nil
}

func productToDoc(p *models.Product) (*productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	doc := &productDoc{
		Name:           p.Name,
		Price:          price,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		PaypalButtonID: p.PaypalButtonID,
	}
	if p.ID != "" {
		oid, err := objectIDFromHex(p.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

// FindByID returns (nil, nil) when the id does not resolve.
func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc productDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	filter := bson.M{"name": bson.M{"$regex": name, "$options": "i"}}
	return r.find(ctx, filter)
}

func (r *MongoProductRepository) FindByMaxPrice(ctx context.Context, price decimal.Decimal) ([]models.Product, error) {
	max, err := toDecimal128(price)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"price": bson.M{"$lte": max}})
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, cursor.Err()
}

// Save inserts the product when it has no id, otherwise replaces it.
func (r *MongoProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	doc, err := productToDoc(product)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if product.ID == "" {
		result, err := r.collection.InsertOne(ctx, doc)
		if err != nil {
			return nil, err
		}
		product.ID = result.InsertedID.(primitive.ObjectID).Hex()
		return product, nil
	}

	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *MongoProductRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *MongoProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}
