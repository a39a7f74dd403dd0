package repository

import (
	"context"
	"errors"
	"fmt"
	userserrors "staybook/internal/users/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Users"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByIDs returns the users that exist among ids in one query.
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	// InsertIfAbsent stores the user unless one with the same id exists and
	// returns whichever record is stored afterwards.
	InsertIfAbsent(ctx context.Context, user *model.User) (*model.User, error)
	UpdateProfile(ctx context.Context, id, username, email, image string) error
	SetRole(ctx context.Context, id, role string) error
	SetRecentCities(ctx context.Context, id string, cities []string) error
	Delete(ctx context.Context, id string) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) InsertIfAbsent(ctx context.Context, user *model.User) (*model.User, error) {
	writeCtx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(writeCtx, user); err != nil {
		if mongotx.IsDuplicateKey(err) {
			// a concurrent first request created it
			return r.FindByID(ctx, user.ID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id, username, email, image string) error {
	return r.update(ctx, id, bson.M{
		"username": username,
		"email":    email,
		"image":    image,
	})
}

func (r *mongoUserRepository) SetRole(ctx context.Context, id, role string) error {
	if role != model.RoleUser && role != model.RoleHotelOwner {
		return fmt.Errorf("%w: %s", userserrors.ErrInvalidRole, role)
	}
	return r.update(ctx, id, bson.M{"role": role})
}

func (r *mongoUserRepository) SetRecentCities(ctx context.Context, id string, cities []string) error {
	return r.update(ctx, id, bson.M{"recent_searched_cities": cities})
}

func (r *mongoUserRepository) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
	}
	return nil
}
