package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
	"iwala99_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo       *repository.UserRepository
	SubmissionRepo *repository.SubmissionRepository
	StorageSvc     *StorageService
}

func NewUserService(userRepo *repository.UserRepository, submissionRepo *repository.SubmissionRepository, storageSvc *StorageService) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		SubmissionRepo: submissionRepo,
		StorageSvc:     storageSvc,
	}
}

// Profile is the authenticated user's own view, with CTF totals folded in.
type Profile struct {
	model.User
	Score       int64 `json:"score"`
	SolvedCount int64 `json:"solvedCount"`
}

func (s *UserService) Profile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	score, err := s.SubmissionRepo.UserScore(userID)
	if err != nil {
		return nil, err
	}
	solved, err := s.SubmissionRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *user, Score: score, SolvedCount: solved}, nil
}

type ProfileUpdate struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

func (s *UserService) UpdateProfile(userID uint, update *ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != user.Username {
		if !util.ValidUsername(*update.Username) {
			return nil, errors.New("username must be 3-20 characters: letters, digits, underscore")
		}
		if _, err := s.UserRepo.FindByUsername(*update.Username); err == nil {
			return nil, util.ErrUsernameTaken
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		user.Username = *update.Username
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

var avatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadAvatar stores the image under a per-user name so re-uploads
// replace rather than accumulate.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExtensions[ext] {
		return "", errors.New("unsupported avatar format")
	}
	if size > 5<<20 {
		return "", errors.New("avatar exceeds the 5 MB limit")
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("avatars/%d_%d%s", userID, time.Now().Unix(), ext)
	url, err := s.StorageSvc.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// PublicUser is what user search exposes about other members.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
}

func (s *UserService) Search(prefix string, excludeID uint) ([]PublicUser, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 2 {
		return []PublicUser{}, nil
	}

	users, err := s.UserRepo.SearchByUsername(prefix, excludeID, 10)
	if err != nil {
		return nil, err
	}

	results := make([]PublicUser, len(users))
	for i, u := range users {
		results[i] = PublicUser{
			ID:       u.PublicID,
			Username: u.Username,
			Avatar:   u.Avatar,
			Bio:      u.Bio,
		}
	}
	return results, nil
}
