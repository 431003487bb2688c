package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"iwala99_backend/internal/config"
	"iwala99_backend/internal/model"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
		seedChallenges(db)
	}

	return db, nil
}

// Migrate creates or updates the schema. Only runs when requested via
// the -migrate or -migrate-only flags.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Challenge{},
		&model.Submission{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
		&model.Conversation{},
		&model.ConversationParticipant{},
		&model.Message{},
		&model.Notification{},
	)
}

func seedFlagHash(flag string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(flag))))
	return hex.EncodeToString(sum[:])
}

// seedChallenges inserts the starter maze when the table is empty so a fresh
// deployment is playable without an admin session.
func seedChallenges(db *gorm.DB) {
	var count int64
	db.Model(&model.Challenge{}).Count(&count)
	if count > 0 {
		return
	}

	starters := []model.Challenge{
		{
			PublicID:    model.GenerateUUID(),
			Title:       "Hidden in Plain Sight",
			Description: "The landing page holds more than it shows. View the source, follow the breadcrumbs.",
			Category:    model.CategoryWeb,
			Difficulty:  model.DifficultyEasy,
			Points:      100,
			Hints:       []string{"HTML comments are not rendered", "Check the response headers too"},
			FlagHash:    seedFlagHash("flag{v13w_s0urc3_always}"),
			IsActive:    true,
		},
		{
			PublicID:    model.GenerateUUID(),
			Title:       "Caesar's Ghost",
			Description: "An old cipher guards a new secret: sync{e13_vf_abg_rapelcgvba}",
			Category:    model.CategoryCrypto,
			Difficulty:  model.DifficultyEasy,
			Points:      100,
			Hints:       []string{"Rotation is the oldest trick in the book"},
			FlagHash:    seedFlagHash("flag{r13_is_not_encryption}"),
			IsActive:    true,
		},
		{
			PublicID:    model.GenerateUUID(),
			Title:       "Buried Metadata",
			Description: "The attached image remembers where it was taken. Dig out what the photographer left behind.",
			Category:    model.CategoryForensics,
			Difficulty:  model.DifficultyMedium,
			Points:      200,
			Hints:       []string{"exiftool is your friend"},
			FlagHash:    seedFlagHash("flag{exif_never_forgets}"),
			IsActive:    true,
		},
	}

	for _, c := range starters {
		db.Create(&c)
	}
	log.Printf("Seeded %d starter challenges", len(starters))
}
