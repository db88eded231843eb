package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/domain"
)

// GormGroupRepository implements GroupRepository using GORM.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GORM-backed group repository.
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) CreateWithCreatorFollow(ctx context.Context, group *domain.Group) error {
	model := domain.GroupToModel(group)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator").Create(model).Error; err != nil {
			return err
		}
		if model.CreatorID == nil {
			return nil
		}
		groupID := model.ID
		return tx.Omit("Follower", "Author", "Group").Create(&domain.FollowModel{
			FollowerID: *model.CreatorID,
			GroupID:    &groupID,
		}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return err
	}

	group.ID = model.ID
	group.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormGroupRepository) GetByID(ctx context.Context, id uint) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormGroupRepository) List(ctx context.Context, pager domain.Pager) ([]domain.Group, int64, domain.Window, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return db }, pager)
}

// Search matches title or description.
func (r *GormGroupRepository) Search(ctx context.Context, term string, pager domain.Pager) ([]domain.Group, int64, domain.Window, error) {
	clause := likeClause("title", "description")
	args := repeat(containsPattern(term), 2)
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where(clause, args...)
	}, pager)
}

func (r *GormGroupRepository) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB, pager domain.Pager) ([]domain.Group, int64, domain.Window, error) {
	rows, total, w, err := paginate[domain.GroupModel](r.db.WithContext(ctx), scope, "title ASC, id ASC", pager)
	if err != nil {
		return nil, 0, w, err
	}
	groups := make([]domain.Group, 0, len(rows))
	for i := range rows {
		groups = append(groups, *rows[i].ToDomain())
	}
	return groups, total, w, nil
}

var _ GroupRepository = (*GormGroupRepository)(nil)
