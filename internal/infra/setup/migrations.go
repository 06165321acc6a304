package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
)

// MigrateDB handles all database migrations using the provided GORM DB instance.
// 只做 create-if-absent: 表已存在时不执行破坏性修改。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	if err := migrateUsersTable(db); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	if err := migrateTodosTable(db); err != nil {
		return fmt.Errorf("failed to migrate todos table: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// migrateUsersTable 处理 users 表迁移
func migrateUsersTable(db *gorm.DB) error {
	var count int64
	db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'users'").Count(&count)

	if count == 0 {
		return createUsersTable(db)
	}
	// 表已存在，交给 AutoMigrate 补充缺失的列和索引
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to auto-migrate users table: %w", err)
	}
	logrus.Info("Users table schema checked/updated successfully")
	return nil
}

// createUsersTable 创建 users 表
func createUsersTable(db *gorm.DB) error {
	sql := `
	CREATE TABLE users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(191) NOT NULL, -- 限制长度以匹配索引
		email VARCHAR(191) NOT NULL,
		password TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME(3),
		updated_at DATETIME(3),
		UNIQUE INDEX idx_username (username),
		UNIQUE INDEX idx_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create users table: %v", err)
		return fmt.Errorf("failed to create users table: %w", err)
	}
	logrus.Info("Users table created successfully")
	return nil
}

// migrateTodosTable 处理 todos 表迁移
func migrateTodosTable(db *gorm.DB) error {
	var count int64
	db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'todos'").Count(&count)

	if count == 0 {
		return createTodosTable(db)
	}
	if err := db.AutoMigrate(&domain.Todo{}); err != nil {
		return fmt.Errorf("failed to auto-migrate todos table: %w", err)
	}
	logrus.Info("Todos table schema checked/updated successfully")
	return nil
}

// createTodosTable 创建 todos 表
func createTodosTable(db *gorm.DB) error {
	sql := `
	CREATE TABLE todos (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(191) NOT NULL,
		description TEXT,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority INT NOT NULL DEFAULT 2, -- 1: low, 2: medium, 3: high
		created_at DATETIME(3),
		updated_at DATETIME(3),
		owner_id BIGINT UNSIGNED NOT NULL,
		INDEX idx_owner_id (owner_id),
		CONSTRAINT fk_todos_owner FOREIGN KEY (owner_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create todos table: %v", err)
		return fmt.Errorf("failed to create todos table: %w", err)
	}
	logrus.Info("Todos table created successfully")
	return nil
}
