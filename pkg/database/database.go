package database

import (
	"finlit_backend/internal/config"
	"finlit_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
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
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Lesson{},
		&model.LessonQuestion{},
		&model.LessonCompletion{},
		&model.QuizSubmissionRecord{},
		&model.Story{},
		&model.StoryComment{},
		&model.StoryLike{},
		&model.Career{},
		&model.CostOfLiving{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 静态目录数据（课程、职业、生活成本）为空时灌入内置数据
	if err := SeedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}
