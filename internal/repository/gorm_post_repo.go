package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/birdup/internal/domain"
)

const feedOrder = "posts.created_at DESC, posts.id DESC"

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := domain.PostToModel(post)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	post.ID = model.ID
	post.CreatedAt = model.CreatedAt
	post.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes text, group and image. A nil group clears it.
// Callers check the post exists first; MySQL reports unchanged rows as unaffected.
func (r *GormPostRepository) Update(ctx context.Context, post *domain.Post) error {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	return result.Error
}

// Delete removes the post and its comments.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.PostModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var model domain.PostModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPostRepository) List(ctx context.Context, filter PostFilter, pager domain.Pager) ([]domain.Post, int64, domain.Window, error) {
	rows, total, w, err := paginate[domain.PostModel](r.db.WithContext(ctx), r.scope(filter), feedOrder, pager, "Author", "Group")
	if err != nil {
		return nil, 0, w, err
	}
	posts := make([]domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, *rows[i].ToDomain())
	}
	return posts, total, w, nil
}

func (r *GormPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) scope(f PostFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AuthorID != nil {
			db = db.Where("posts.author_id = ?", *f.AuthorID)
		}
		if f.GroupID != nil {
			db = db.Where("posts.group_id = ?", *f.GroupID)
		}
		if f.UngroupedOnly {
			db = db.Where("posts.group_id IS NULL")
		}
		if f.FollowerID != nil {
			// One predicate over both edge kinds, so a post reachable through
			// an author and a group edge is still a single row.
			authors := r.db.Model(&domain.FollowModel{}).Select("author_id").
				Where("follower_id = ? AND author_id IS NOT NULL", *f.FollowerID)
			groups := r.db.Model(&domain.FollowModel{}).Select("group_id").
				Where("follower_id = ? AND group_id IS NOT NULL", *f.FollowerID)
			db = db.Where("(posts.author_id IN (?) OR posts.group_id IN (?))", authors, groups)
		}
		if f.Term != "" {
			db = db.Where(likeClause("posts.text"), containsPattern(f.Term))
		}
		return db
	}
}

var _ PostRepository = (*GormPostRepository)(nil)
