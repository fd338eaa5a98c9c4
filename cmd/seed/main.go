package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/domain"
	"docvault/internal/repository"
)

// Seeds the baseline departments and a demo admin, then grants every
// department read access to every existing document. Departments have no
// HTTP creation path, so this is how an installation gets them.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	departments := repository.NewDepartmentRepository(db)
	users := repository.NewUserRepository(db)
	permissions := repository.NewPermissionRepository(db)

	log.Println("Creating departments...")
	var depIDs []int64
	for _, name := range []string{"Engineering", "Finance"} {
		dep, err := departments.GetOrCreate(ctx, name)
		if err != nil {
			log.Fatal("department seed failed:", err)
		}
		depIDs = append(depIDs, dep.ID)
		log.Printf("department %q -> id=%d", dep.Name, dep.ID)
	}

	log.Println("Creating admin user...")
	exists, err := users.ExistsByUsername(ctx, "admin")
	if err != nil {
		log.Fatal(err)
	}
	if !exists {
		hash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin := domain.User{
			Username:     "admin",
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
			DepartmentID: &depIDs[0],
		}
		if err := users.Create(ctx, &admin); err != nil {
			log.Fatal("admin seed failed:", err)
		}
		log.Printf("admin user id=%d (password: admin123)", admin.ID)
	}

	log.Println("Granting department access to existing documents...")
	var docIDs []int64
	if err := db.Model(&domain.Document{}).Pluck("id", &docIDs).Error; err != nil {
		log.Fatal(err)
	}
	for _, docID := range docIDs {
		for _, depID := range depIDs {
			if err := permissions.Grant(ctx, docID, depID); err != nil {
				log.Fatal("grant failed:", err)
			}
		}
	}

	log.Println("Seed complete.")
}
