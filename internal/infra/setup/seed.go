package setup

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
)

// 演示账号，仅在开发环境按需创建
const (
	demoUsername = "testuser"
	demoEmail    = "test@example.com"
	demoPassword = "password123"
)

// SeedDemoData 创建演示用户和示例待办事项。
// 严格 create-if-absent: 演示用户已存在时不做任何修改。
func SeedDemoData(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot seed database with nil DB connection")
	}

	var existing domain.User
	err := db.Where("username = ?", demoUsername).First(&existing).Error
	if err == nil {
		logrus.WithField("username", demoUsername).Info("Demo user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for demo user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	// 用户和示例数据在同一事务中创建，失败时整体回滚
	err = db.Transaction(func(tx *gorm.DB) error {
		user := domain.User{
			Username: demoUsername,
			Email:    demoEmail,
			Password: string(hashed),
			IsActive: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		todos := []domain.Todo{
			{Title: "Buy groceries", Description: "Milk, bread and eggs", Priority: domain.PriorityHigh, OwnerID: user.ID},
			{Title: "Finish project report", Description: "Due by end of the week", Priority: domain.PriorityHigh, OwnerID: user.ID},
			{Title: "Go for a run", Description: "30 minutes of jogging", Completed: true, Priority: domain.PriorityMedium, OwnerID: user.ID},
			{Title: "Read a book", Description: "Pick up the new tech book", Priority: domain.PriorityLow, OwnerID: user.ID},
		}
		return tx.Create(&todos).Error
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	logrus.WithField("username", demoUsername).Info("Demo user and sample todos created")
	return nil
}
