package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tagging/internal/shared/config"
	"tagging/internal/shared/database"
	"tagging/internal/tags"
	"tagging/internal/users"
)

const seedPassword = "qwerty"

type Seeder struct {
	cfg *config.Config
	db  *database.DB
	tag tags.Service
}

func main() {
	fmt.Println("🌱 Starting Tagging Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{
		cfg: cfg,
		db:  db,
		tag: tags.NewService(tags.NewRepository(db.SQL), db.CacheService(), nil, nil, cfg.Tagging),
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(ctx); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Printf("\n🎉 Seeding completed! Log in as admin@example.com / %s and open /admin/tagging/tag/\n", seedPassword)
}

// CleanDatabase empties every table, dependents first
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"tagged_items",
		"tag_translations",
		"tag_synonyms",
		"tags",
		"users",
	}

	dbCfg, _ := s.cfg.Database(s.db.Alias)

	return s.db.SQL.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Emptying table: %s\n", table)

			stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)
			if dbCfg.Driver == config.DriverSQLite {
				stmt = fmt.Sprintf("DELETE FROM %s", table)
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to empty table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.SeedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedVocabulary(ctx); err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	if err := s.SeedTaggedItems(ctx); err != nil {
		return fmt.Errorf("failed to seed tagged items: %w", err)
	}

	if s.db.Redis != nil {
		if err := tags.InvalidateTagCache(ctx, s.db.CacheService()); err != nil {
			log.Printf("Warning: Failed to clear tag cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates one admin, one staff member and one regular user
func (s *Seeder) SeedUsers(ctx context.Context) error {
	fmt.Println("  👤 Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"Admin", "User", "admin@example.com", users.RoleAdmin},
		{"Staff", "User", "staff@example.com", users.RoleStaff},
		{"Regular", "User", "user@example.com", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.SQL.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return nil
}

// SeedVocabulary creates a small tag vocabulary. "kitten" and "puppy" start
// as tags of their own so the join action has something to merge.
func (s *Seeder) SeedVocabulary(ctx context.Context) error {
	fmt.Println("  🏷️ Seeding tags...")

	vocabulary := []struct {
		name         string
		synonyms     []string
		translations map[string]string
	}{
		{"cat", []string{"feline", "kitty"}, map[string]string{"de": "Katze", "fr": "chat"}},
		{"kitten", []string{"kitty-cat"}, nil},
		{"dog", []string{"hound", "canine"}, map[string]string{"de": "Hund", "fr": "chien"}},
		{"puppy", []string{"pup"}, nil},
		{"bird", []string{"avian"}, map[string]string{"de": "Vogel", "fr": "oiseau"}},
	}

	for _, entry := range vocabulary {
		tag, err := s.tag.CreateTag(ctx, tags.CreateTagRequest{Name: entry.name, Synonyms: entry.synonyms})
		if err != nil {
			return fmt.Errorf("failed to create tag %s: %w", entry.name, err)
		}

		if s.cfg.Tagging.MultilingualTags {
			for lang, name := range entry.translations {
				if _, err := s.tag.SetTranslation(ctx, uuid.MustParse(tag.ID), tags.SetTranslationRequest{LanguageCode: lang, Name: name}); err != nil {
					return fmt.Errorf("failed to translate tag %s: %w", entry.name, err)
				}
			}
		}

		fmt.Printf("    ✅ Created tag: %s (%d synonyms)\n", tag.Name, len(tag.Synonyms))
	}

	return nil
}

// SeedTaggedItems tags a few demo objects by synonym
func (s *Seeder) SeedTaggedItems(ctx context.Context) error {
	fmt.Println("  📎 Seeding tagged items...")

	items := []tags.TagObjectRequest{
		{ObjectType: "photo", ObjectID: "1", Tags: []string{"kitty", "kitten"}},
		{ObjectType: "photo", ObjectID: "2", Tags: []string{"hound", "puppy"}},
		{ObjectType: "article", ObjectID: "42", Tags: []string{"avian", "feline"}},
	}

	for _, item := range items {
		attached, err := s.tag.TagObject(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to tag %s %s: %w", item.ObjectType, item.ObjectID, err)
		}
		fmt.Printf("    ✅ Tagged %s %s with %d tags\n", item.ObjectType, item.ObjectID, len(attached))
	}

	return nil
}
