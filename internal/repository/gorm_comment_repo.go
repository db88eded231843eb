package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/birdup/internal/domain"
)

const commentOrder = "created_at ASC, id ASC"

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	model := &domain.CommentModel{
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	comment.ID = model.ID
	comment.CreatedAt = model.CreatedAt
	return nil
}

// GetByID loads a comment that belongs to postID.
func (r *GormCommentRepository) GetByID(ctx context.Context, postID, id uint) (*domain.Comment, error) {
	var model domain.CommentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint, pager domain.Pager) ([]domain.Comment, int64, domain.Window, error) {
	rows, total, w, err := paginate[domain.CommentModel](r.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		return db.Where("post_id = ?", postID)
	}, commentOrder, pager, "Author")
	if err != nil {
		return nil, 0, w, err
	}
	comments := make([]domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, *rows[i].ToDomain())
	}
	return comments, total, w, nil
}

func (r *GormCommentRepository) AllByPost(ctx context.Context, postID uint) ([]domain.Comment, error) {
	var rows []domain.CommentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order(commentOrder).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, *rows[i].ToDomain())
	}
	return comments, nil
}

func (r *GormCommentRepository) UpdateText(ctx context.Context, id uint, text string) error {
	return r.db.WithContext(ctx).Model(&domain.CommentModel{ID: id}).Update("text", text).Error
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.CommentModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

var _ CommentRepository = (*GormCommentRepository)(nil)
