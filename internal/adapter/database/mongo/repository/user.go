package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	database "usersapi/internal/adapter/database/mongo"
	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
)

type userDocument struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type counter struct {
	Seq int64 `bson:"seq"`
}

// UserRepository keeps users as documents whose _id is an integer drawn
// from a counters document, so ids look the same as on the SQL backends.
type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) port.UserRepository {
	return &UserRepository{db: db}
}

// now is truncated to what BSON dates can hold.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (ur *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := ur.db.Users().Find(ctx, bson.D{}, opts)

	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	defer cursor.Close(ctx)

	var documents []userDocument

	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(documents))

	for _, document := range documents {
		users = append(users, document.toDomain())
	}

	return users, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, bool, error) {
	return ur.findOne(ctx, bson.M{"_id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return ur.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (ur *UserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, bool, error) {
	var document userDocument

	err := ur.db.Users().FindOne(ctx, filter).Decode(&document)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, false, nil
	}

	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return document.toDomain(), true, nil
}

func (ur *UserRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter

	err := ur.db.Counters().FindOneAndUpdate(ctx,
		bson.M{"_id": database.UsersCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)

	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}

	return c.Seq, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.Normalize()

	id, err := ur.nextID(ctx)

	if err != nil {
		return domain.User{}, err
	}

	timestamp := now()

	document := userDocument{
		ID:        id,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
	}

	if _, err := ur.db.Users().InsertOne(ctx, document); err != nil {
		return domain.User{}, writeError("create user", err)
	}

	return document.toDomain(), nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, bool, error) {
	user.Normalize()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	update := bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"updated_at": now(),
	}}

	var document userDocument

	err := ur.db.Users().FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, update, opts).Decode(&document)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, false, nil
	}

	if err != nil {
		return domain.User{}, false, writeError("update user", err)
	}

	return document.toDomain(), true, nil
}

func (ur *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := ur.db.Users().DeleteOne(ctx, bson.M{"_id": id})

	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	return result.DeletedCount > 0, nil
}

func (ur *UserRepository) Count(ctx context.Context) (int64, error) {
	count, err := ur.db.Users().CountDocuments(ctx, bson.D{})

	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func writeError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrEmailConflict, err))
	}

	return fmt.Errorf("%s: %w", op, err)
}
