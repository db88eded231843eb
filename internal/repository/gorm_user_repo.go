package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	model := domain.UserToModel(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Create(&domain.ProfileModel{UserID: model.ID}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return err
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update writes the editable user fields.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{ID: user.ID}).
		Select("username", "first_name", "last_name", "email").
		Updates(domain.UserToModel(user))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrUsernameExists
		}
		return result.Error
	}
	return nil
}

// GetProfile returns the user's profile, creating an empty one for users
// that predate profiles.
func (r *GormUserRepository) GetProfile(ctx context.Context, userID uint) (*domain.Profile, error) {
	model := domain.ProfileModel{UserID: userID}
	err := r.db.WithContext(ctx).
		Where(domain.ProfileModel{UserID: userID}).
		FirstOrCreate(&model).Error
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Model(&domain.ProfileModel{}).
		Where("user_id = ?", profile.UserID).
		Select("about", "photo").
		Updates(map[string]interface{}{"about": profile.About, "photo": profile.Photo}).Error
}

// Search matches first name, last name or username. One OR query returns
// each user once even when several columns match.
func (r *GormUserRepository) Search(ctx context.Context, term string, pager domain.Pager) ([]domain.User, int64, domain.Window, error) {
	clause := likeClause("first_name", "last_name", "username")
	args := repeat(containsPattern(term), 3)

	rows, total, w, err := paginate[domain.UserModel](r.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		return db.Where(clause, args...)
	}, "username ASC, id ASC", pager)
	if err != nil {
		return nil, 0, w, err
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].ToDomain())
	}
	return users, total, w, nil
}

var _ UserRepository = (*GormUserRepository)(nil)
