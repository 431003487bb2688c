package repository

import (
	"iwala99_backend/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

// FindPage lists posts newest first, optionally filtered by category.
func (r *PostRepository) FindPage(category string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := r.DB.Model(&model.Post{})
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostRepository) FindByID(id string) (*model.Post, error) {
	var post model.Post
	err := r.DB.Preload("Author").Where("id = ?", id).First(&post).Error
	return &post, err
}

func (r *PostRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

// CreateComment inserts the comment and bumps the denormalized counter
// in one transaction.
func (r *PostRepository) CreateComment(comment *model.Comment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).
			Error
	})
}

func (r *PostRepository) FindComments(postID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.DB.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *PostRepository) FindCommentByID(id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.Where("id = ?", id).First(&comment).Error
	return &comment, err
}

func (r *PostRepository) DeleteComment(id string, postID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.Post{}).
			Where("id = ? AND comments_count > 0", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - 1")).
			Error
	})
}

// ToggleLike flips the user's like on a post and keeps likes_count in
// step. Returns whether the post ends up liked.
func (r *PostRepository) ToggleLike(userID uint, postID string) (bool, error) {
	liked := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.PostLike
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&model.Post{}).
				Where("id = ? AND likes_count > 0", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).
				Error
		case err == gorm.ErrRecordNotFound:
			like := model.PostLike{UserID: userID, PostID: postID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&model.Post{}).
				Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).
				Error
		default:
			return err
		}
	})
	return liked, err
}

// LikedPostIDs narrows a page of posts to the ones this user liked.
func (r *PostRepository) LikedPostIDs(userID uint, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.DB.Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}
