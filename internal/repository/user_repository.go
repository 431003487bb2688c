package repository

import (
	"iwala99_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByPublicID(publicID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("public_id = ?", publicID).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).
		Error
}

// likeEscaper neutralizes LIKE wildcards in user input. '!' is the
// escape character in the search query, so the prefix always matches
// literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchByUsername does a prefix match for the "start a conversation" picker.
func (r *UserRepository) SearchByUsername(prefix string, excludeID uint, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("username LIKE ? ESCAPE '!' AND id <> ? AND disabled = false", likeEscaper.Replace(prefix)+"%", excludeID).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}
