package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"bedtime-story-api/internal/config"
	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表
	fmt.Println("Migrating schema...")
	if err := dataLayer.PgClient.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 创建种子用户（可选）
	email := os.Getenv("BOOTSTRAP_USER_EMAIL")
	if email == "" {
		fmt.Println("BOOTSTRAP_USER_EMAIL not set, skipping seed user")
		fmt.Println("Bootstrap completed.")
		return
	}

	existing, err := dataLayer.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("failed to check user existence: %v", err)
	}
	if existing != nil {
		fmt.Printf("User %s already exists with ID: %d\n", email, existing.ID)
	} else {
		user := entity.NewUser(email)
		if err := dataLayer.UserRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
		fmt.Printf("User %s created with ID: %d\n", email, user.ID)
	}

	fmt.Println("Bootstrap completed.")
}
