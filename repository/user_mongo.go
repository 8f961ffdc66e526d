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

// MongoUserRepository persists users in the "users" collection.
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

var _ UserRepository = (*MongoUserRepository)(nil)

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password"`
	FullName    string             `bson:"full_name"`
	Address     string             `bson:"address"`
	PhoneNumber string             `bson:"phone_number"`
	Roles       []string           `bson:"roles"`
	CreatedAt   time.Time          `bson:"created_at"`
	LastLoginAt *time.Time         `bson:"last_login_at,omitempty"`
}

func (d *userDoc) toModel() *models.User {
	roles := make([]models.Role, len(d.Roles))
	for i, r := range d.Roles {
		roles[i] = models.Role(r)
	}
	return &models.User{
		ID:          d.ID.Hex(),
		Username:    d.Username,
		Email:       d.Email,
		Password:    d.Password,
		FullName:    d.FullName,
		Address:     d.Address,
		PhoneNumber: d.PhoneNumber,
		Roles:       roles,
		CreatedAt:   d.CreatedAt,
		LastLoginAt: d.LastLoginAt,
	}
}

func userToDoc(u *models.User) (*userDoc, error) {
	doc := &userDoc{
		Username:    u.Username,
		Email:       u.Email,
		Password:    u.Password,
		FullName:    u.FullName,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		Roles:       u.RoleNames(),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
	if u.ID != "" {
		oid, err := objectIDFromHex(u.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc userDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	doc, err := userToDoc(user)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	user.ID = result.InsertedID.(primitive.ObjectID).Hex()
	return user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	doc, err := userToDoc(user)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}
