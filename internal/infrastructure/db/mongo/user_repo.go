package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/baechuer/account-service/internal/domain"
)

const usersCollection = "users"

// UserRepo persists users in a Mongo collection keyed by normalized email.
// The unique index on email is the serialization point for concurrent
// registrations: check-then-insert is never relied on.
type UserRepo struct {
	col *driver.Collection
}

func NewUserRepo(db *driver.Database) *UserRepo {
	return &UserRepo{col: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Called once at bootstrap;
// CreateOne is idempotent for an identical existing index.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, driver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	return nil
}

// ---------- record mapping ----------

type userRecord struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	FullName     string    `bson:"full_name,omitempty"`
	IsRegistered bool      `bson:"is_registered"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toDomainUser(rec userRecord) domain.User {
	return domain.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FullName:     rec.FullName,
		IsRegistered: rec.IsRegistered,
		CreatedAt:    rec.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ---------- account.UserRepo ----------

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	var rec userRecord
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&rec)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainUser(rec), nil
}

func (r *UserRepo) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	rec := userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		IsRegistered: u.IsRegistered,
		CreatedAt:    u.CreatedAt,
	}

	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		if driver.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailExists()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainUser(rec), nil
}

func (r *UserRepo) SetRegistered(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"is_registered": true}},
	)
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	// matched-but-unmodified means the account was already active: a no-op.
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, email string, newHash string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password_hash": newHash}},
	)
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	set := bson.M{}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if len(set) == 0 {
		return domain.User{}, domain.ErrInvalidField("profile", "no updatable fields")
	}

	var rec userRecord
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return toDomainUser(rec), nil
}
