package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/birdup/internal/domain"
)

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// FollowAuthor inserts an author edge. Uniqueness is left to the
// uidx_follow_author index; a violation becomes ErrAlreadyFollowing.
func (r *GormFollowRepository) FollowAuthor(ctx context.Context, followerID, authorID uint) (*domain.Follow, error) {
	return r.insert(ctx, &domain.FollowModel{FollowerID: followerID, AuthorID: &authorID})
}

// FollowGroup inserts a group edge, unique through uidx_follow_group.
func (r *GormFollowRepository) FollowGroup(ctx context.Context, followerID, groupID uint) (*domain.Follow, error) {
	return r.insert(ctx, &domain.FollowModel{FollowerID: followerID, GroupID: &groupID})
}

func (r *GormFollowRepository) insert(ctx context.Context, model *domain.FollowModel) (*domain.Follow, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormFollowRepository) UnfollowAuthor(ctx context.Context, followerID, authorID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&domain.FollowModel{})
	return result.RowsAffected > 0, result.Error
}

func (r *GormFollowRepository) UnfollowGroup(ctx context.Context, followerID, groupID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND group_id = ?", followerID, groupID).
		Delete(&domain.FollowModel{})
	return result.RowsAffected > 0, result.Error
}

func (r *GormFollowRepository) IsFollowingAuthor(ctx context.Context, followerID, authorID uint) (bool, error) {
	return r.exists(ctx, "follower_id = ? AND author_id = ?", followerID, authorID)
}

func (r *GormFollowRepository) IsFollowingGroup(ctx context.Context, followerID, groupID uint) (bool, error) {
	return r.exists(ctx, "follower_id = ? AND group_id = ?", followerID, groupID)
}

func (r *GormFollowRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where(query, args...).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormFollowRepository) ListByFollower(ctx context.Context, followerID uint, term string, pager domain.Pager) ([]domain.Follow, int64, domain.Window, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("follows.follower_id = ?", followerID)
		if term == "" {
			return db
		}
		pattern := containsPattern(term)
		followers := r.db.Model(&domain.UserModel{}).Select("id").Where(likeClause("username"), pattern)
		groups := r.db.Model(&domain.GroupModel{}).Select("id").Where(likeClause("slug"), pattern)
		return db.Where("(follows.follower_id IN (?) OR follows.author_id IN (?) OR follows.group_id IN (?))",
			followers, followers, groups)
	}

	rows, total, w, err := paginate[domain.FollowModel](r.db.WithContext(ctx), scope,
		"follows.created_at DESC, follows.id DESC", pager, "Follower", "Author", "Group")
	if err != nil {
		return nil, 0, w, err
	}
	follows := make([]domain.Follow, 0, len(rows))
	for i := range rows {
		follows = append(follows, *rows[i].ToDomain())
	}
	return follows, total, w, nil
}

func (r *GormFollowRepository) ListGroupFollowers(ctx context.Context, groupID uint, pager domain.Pager) ([]domain.User, int64, domain.Window, error) {
	followerIDs := r.db.Model(&domain.FollowModel{}).Select("follower_id").Where("group_id = ?", groupID)
	rows, total, w, err := paginate[domain.UserModel](r.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", followerIDs)
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

// CountFollowers returns how many users follow the author.
func (r *GormFollowRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// CountFollowing returns how many authors the user follows.
func (r *GormFollowRepository) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND author_id IS NOT NULL", followerID).
		Count(&count).Error
	return count, err
}

var _ FollowRepository = (*GormFollowRepository)(nil)
