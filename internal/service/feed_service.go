package service

import (
	"errors"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
	"iwala99_backend/internal/util"

	"gorm.io/gorm"
)

var postCategories = map[model.PostCategory]bool{
	model.PostGeneral:  true,
	model.PostTools:    true,
	model.PostCTF:      true,
	model.PostNews:     true,
	model.PostJobs:     true,
	model.PostLearning: true,
	model.PostWriteups: true,
}

func ValidPostCategory(category string) bool {
	return postCategories[model.PostCategory(category)]
}

type FeedService struct {
	PostRepo        *repository.PostRepository
	NotificationSvc *NotificationService
}

func NewFeedService(postRepo *repository.PostRepository, notificationSvc *NotificationService) *FeedService {
	return &FeedService{
		PostRepo:        postRepo,
		NotificationSvc: notificationSvc,
	}
}

// PostView wraps a post with the viewer's like state.
type PostView struct {
	model.Post
	Liked bool `json:"liked"`
}

type PostPage struct {
	Posts    []PostView `json:"posts"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// ListPosts pages the feed newest first. viewerID of 0 is an anonymous
// reader with no like state.
func (s *FeedService) ListPosts(viewerID uint, category string, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	posts, total, err := s.PostRepo.FindPage(category, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	likedSet := make(map[string]bool)
	if viewerID != 0 && len(posts) > 0 {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		likedIDs, err := s.PostRepo.LikedPostIDs(viewerID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedSet[id] = true
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p, Liked: likedSet[p.ID]}
	}

	return &PostPage{
		Posts:    views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *FeedService) CreatePost(authorID uint, content, category string) (*model.Post, error) {
	if category == "" {
		category = string(model.PostGeneral)
	}
	if !ValidPostCategory(category) {
		return nil, errors.New("unknown post category")
	}

	post := &model.Post{
		AuthorID: authorID,
		Content:  content,
		Category: model.PostCategory(category),
	}
	if err := s.PostRepo.Create(post); err != nil {
		return nil, err
	}
	return s.PostRepo.FindByID(post.ID)
}

// DeletePost allows the author or an admin to remove a post together
// with its comments and likes.
func (s *FeedService) DeletePost(postID string, requesterID uint, requesterRole model.UserRole) error {
	post, err := s.PostRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPostNotFound
		}
		return err
	}

	if post.AuthorID != requesterID && requesterRole != model.RoleAdmin {
		return util.ErrPermissionDenied
	}

	return s.PostRepo.Delete(postID)
}

func (s *FeedService) ListComments(postID string) ([]model.Comment, error) {
	if _, err := s.PostRepo.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	return s.PostRepo.FindComments(postID)
}

func (s *FeedService) CreateComment(postID string, authorID uint, authorName, content string) (*model.Comment, error) {
	post, err := s.PostRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.PostRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	if s.NotificationSvc != nil && post.AuthorID != authorID {
		s.NotificationSvc.Notify(post.AuthorID, model.NotifyComment,
			"New comment",
			authorName+" commented on your post.",
			map[string]interface{}{
				"postId":    postID,
				"commentId": comment.ID,
			})
	}

	return comment, nil
}

func (s *FeedService) DeleteComment(commentID string, requesterID uint, requesterRole model.UserRole) error {
	comment, err := s.PostRepo.FindCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCommentNotFound
		}
		return err
	}

	if comment.AuthorID != requesterID && requesterRole != model.RoleAdmin {
		return util.ErrPermissionDenied
	}

	return s.PostRepo.DeleteComment(commentID, comment.PostID)
}

// ToggleLike flips the like and, on a fresh like, notifies the author.
func (s *FeedService) ToggleLike(postID string, userID uint, username string) (bool, error) {
	post, err := s.PostRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrPostNotFound
		}
		return false, err
	}

	liked, err := s.PostRepo.ToggleLike(userID, postID)
	if err != nil {
		return false, err
	}

	if liked && s.NotificationSvc != nil && post.AuthorID != userID {
		s.NotificationSvc.Notify(post.AuthorID, model.NotifyLike,
			"New like",
			username+" liked your post.",
			map[string]interface{}{
				"postId": postID,
			})
	}

	return liked, nil
}
