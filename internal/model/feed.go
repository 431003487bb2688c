package model

type PostCategory string

const (
	PostGeneral  PostCategory = "general"
	PostTools    PostCategory = "tools"
	PostCTF      PostCategory = "ctf"
	PostNews     PostCategory = "news"
	PostJobs     PostCategory = "jobs"
	PostLearning PostCategory = "learning"
	PostWriteups PostCategory = "writeups"
)

// Post is a feed entry. LikesCount and CommentsCount are denormalized and
// maintained in the same transaction as the like/comment write.
type Post struct {
	UUIDBase
	AuthorID      uint         `gorm:"index;not null" json:"authorId"`
	Author        User         `gorm:"foreignKey:AuthorID" json:"author"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	Category      PostCategory `gorm:"size:20;default:'general';index" json:"category"`
	LikesCount    int          `gorm:"default:0" json:"likesCount"`
	CommentsCount int          `gorm:"default:0" json:"commentsCount"`
	Comments      []Comment    `gorm:"foreignKey:PostID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

type Comment struct {
	UUIDBase
	PostID   string `gorm:"index;type:varchar(36);not null" json:"postId"`
	AuthorID uint   `gorm:"index;not null" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string `gorm:"type:text;not null" json:"content"`
}

func (Comment) TableName() string {
	return "comments"
}

// PostLike enforces at most one like per (user, post) pair.
type PostLike struct {
	BaseModel
	UserID uint   `gorm:"uniqueIndex:idx_user_post;not null" json:"userId"`
	PostID string `gorm:"uniqueIndex:idx_user_post;type:varchar(36);not null" json:"postId"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
