// Command seed bulk-loads catalog fixtures: ingredients, recipes with
// their ingredient links, and nutrition macros. Bulk writes bypass the
// change notifier, so loading never triggers twist generation.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/service"
)

func main() {
	fixturesDir := flag.String("fixtures", "fixtures", "directory containing the fixture CSV files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to open ORM connection: %v", err)
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	owner, err := seedOwner(db)
	if err != nil {
		log.Fatalf("Failed to create seed owner: %v", err)
	}

	log.Println("=== Loading Ingredients ===")
	if err := loadIngredients(db, filepath.Join(*fixturesDir, "ingredients.csv")); err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}

	log.Println("=== Loading Recipes ===")
	if err := loadRecipes(db, owner, filepath.Join(*fixturesDir, "recipes.csv")); err != nil {
		log.Fatalf("Failed to load recipes: %v", err)
	}

	log.Println("=== Linking Ingredients ===")
	if err := linkIngredients(db, filepath.Join(*fixturesDir, "recipe_ingredients.csv")); err != nil {
		log.Fatalf("Failed to link ingredients: %v", err)
	}

	log.Println("=== Loading Macros ===")
	if err := loadMacros(db, filepath.Join(*fixturesDir, "macros.csv")); err != nil {
		log.Fatalf("Failed to load macros: %v", err)
	}

	log.Println("=== ALL DATA LOADED SUCCESSFULLY ===")
}

// seedOwner finds or creates the account that owns the seeded recipes.
func seedOwner(db *gorm.DB) (*model.User, error) {
	const email = "seed@tastebook.local"

	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		return &user, nil
	}

	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		password = "seed-password"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = model.User{
		Username:     "seed",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func loadIngredients(db *gorm.DB, path string) error {
	return forEachRow(path, func(row map[string]string) error {
		ingredient := model.Ingredient{Name: row["name"], Category: row["category"]}
		err := db.Where("name = ? AND category = ?", ingredient.Name, ingredient.Category).
			FirstOrCreate(&ingredient).Error
		if err != nil {
			return err
		}
		log.Printf("ingredient %q (%s)", ingredient.Name, ingredient.Category)
		return nil
	})
}

func loadRecipes(db *gorm.DB, owner *model.User, path string) error {
	return forEachRow(path, func(row map[string]string) error {
		cookingTime, err := strconv.Atoi(row["cooking_time"])
		if err != nil {
			return fmt.Errorf("recipe %q: bad cooking_time: %w", row["name"], err)
		}

		recipe := model.Recipe{
			Name:               row["name"],
			Instructions:       row["instructions"],
			CookingTime:        cookingTime,
			OwnerID:            owner.ID,
			AIGenerationStatus: model.StatusPending,
			Embedding:          service.GenerateEmbedding(row["name"]),
		}
		if err := db.Where("name = ? AND owner_id = ?", recipe.Name, owner.ID).
			FirstOrCreate(&recipe).Error; err != nil {
			return err
		}
		log.Printf("recipe %q (%d min)", recipe.Name, recipe.CookingTime)
		return nil
	})
}

func linkIngredients(db *gorm.DB, path string) error {
	return forEachRow(path, func(row map[string]string) error {
		var recipe model.Recipe
		if err := db.Where("name = ?", row["recipe"]).First(&recipe).Error; err != nil {
			return fmt.Errorf("link: unknown recipe %q: %w", row["recipe"], err)
		}
		var ingredient model.Ingredient
		if err := db.Where("name = ?", row["ingredient"]).First(&ingredient).Error; err != nil {
			return fmt.Errorf("link: unknown ingredient %q: %w", row["ingredient"], err)
		}

		link := model.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Quantity:     row["quantity"],
		}
		return db.Where("recipe_id = ? AND ingredient_id = ?", recipe.ID, ingredient.ID).
			FirstOrCreate(&link).Error
	})
}

func loadMacros(db *gorm.DB, path string) error {
	return forEachRow(path, func(row map[string]string) error {
		var recipe model.Recipe
		if err := db.Where("name = ?", row["recipe"]).First(&recipe).Error; err != nil {
			return fmt.Errorf("macros: unknown recipe %q: %w", row["recipe"], err)
		}

		macro := model.Macro{
			RecipeID: recipe.ID,
			Calories: atoiOrZero(row["calories"]),
			Protein:  atoiOrZero(row["protein"]),
			Carbs:    atoiOrZero(row["carbs"]),
			Fat:      atoiOrZero(row["fat"]),
		}
		return db.Where("recipe_id = ?", recipe.ID).FirstOrCreate(&macro).Error
	})
}

// forEachRow streams a CSV file with a header row, handing each record to
// fn as a column-name map.
func forEachRow(path string, fn func(row map[string]string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%s: failed to read header: %w", path, err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
