package seed

import (
	"context"
	"fmt"
	"strconv"

	"treasurehunt/internal/models"
	"treasurehunt/internal/observability"
	"treasurehunt/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const bootstrapCreatorKey = "bootstrap-creator"

// CreatorResolver picks the user credited with each seeded treasure.
type CreatorResolver struct {
	users      repository.UserRepository
	skipBcrypt bool
	metrics    *observability.SeedMetrics
	group      singleflight.Group
}

// NewCreatorResolver returns a resolver backed by users. A nil users repository
// makes every creator synthetic, which is what dry runs use.
func NewCreatorResolver(users repository.UserRepository, skipBcrypt bool, metrics *observability.SeedMetrics) *CreatorResolver {
	if metrics == nil {
		metrics = observability.NewSeedMetrics(nil)
	}
	return &CreatorResolver{users: users, skipBcrypt: skipBcrypt, metrics: metrics}
}

// Resolve returns a random existing user, creating one when the table is
// empty. It never fails: lookup errors fall back to a synthetic creator.
func (r *CreatorResolver) Resolve(ctx context.Context, f *gofakeit.Faker) models.Creator {
	if r.users == nil {
		return syntheticCreator(f)
	}

	users, err := r.users.List(ctx)
	if err == nil && len(users) > 0 {
		return creatorFromUser(&users[f.Number(0, len(users)-1)])
	}

	if err == nil {
		var user *models.User
		if user, err = r.bootstrap(ctx, f); err == nil {
			return creatorFromUser(user)
		}
	}

	observability.L(ctx).Warn("falling back to synthetic creator", zap.Error(err))
	r.metrics.CreatorFallbacks.Inc()
	return syntheticCreator(f)
}

// bootstrap creates the first user. Concurrent callers share one creation.
func (r *CreatorResolver) bootstrap(ctx context.Context, f *gofakeit.Faker) (*models.User, error) {
	v, err, _ := r.group.Do(bootstrapCreatorKey, func() (interface{}, error) {
		// an earlier flight may already have created it; the cached list can lag
		existing, err := r.users.First(ctx)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		password := DefaultPassword
		if !r.skipBcrypt {
			hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			password = string(hashed)
		}

		user := &models.User{
			Username:  fmt.Sprintf("%s%d", f.Username(), f.Number(100, 999)),
			Email:     f.Email(),
			Password:  password,
			FirstName: f.FirstName(),
			LastName:  f.LastName(),
		}
		if err := r.users.Create(ctx, user); err != nil {
			return nil, err
		}
		r.metrics.CreatorsCreated.Inc()
		observability.L(ctx).Info("created seed creator", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

func creatorFromUser(u *models.User) models.Creator {
	return models.Creator{ID: strconv.FormatUint(uint64(u.ID), 10), Name: u.Username}
}

func syntheticCreator(f *gofakeit.Faker) models.Creator {
	return models.Creator{ID: f.UUID(), Name: f.Name()}
}
