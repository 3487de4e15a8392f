package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the role catalog, sample departments and a bootstrap admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"user_departments", "user_role_change_logs", "password_change_logs",
				"password_histories", "users", "departments", "roles",
			} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		roles := []struct {
			Name string
			Desc string
		}{
			{"SuperAdmin", "Full system access"},
			{"Admin", "Administrative access"},
			{"Manager", "Team management access"},
			{"Editor", "Content editing access"},
			{"User", "Standard user access"},
			{"Viewer", "Read-only access"},
		}

		for _, r := range roles {
			var exists int
			row := db.Raw("SELECT 1 FROM roles WHERE name = ?", r.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO roles (name, description, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
				r.Name, r.Desc,
			).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", r.Name, err)
			}
			fmt.Printf("Seeded role: %s\n", r.Name)
		}

		departments := []struct {
			Name string
			Code string
			Desc string
		}{
			{"Engineering", "ENG", "Product engineering"},
			{"Sales", "SLS", "Sales and partnerships"},
			{"Marketing", "MKT", "Marketing and communications"},
			{"Human Resources", "HR", "People operations"},
		}

		for _, d := range departments {
			var exists int
			row := db.Raw("SELECT 1 FROM departments WHERE code = ?", d.Code).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO departments (name, code, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				d.Name, d.Code, d.Desc,
			).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Code, err)
			}
			fmt.Printf("Seeded department: %s\n", d.Code)
		}

		adminEmail := "admin@example.com"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("bootstrap admin already exists:", adminEmail)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe!123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash bootstrap password: %v", err)
		}

		var superAdminID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", "SuperAdmin").Row().Scan(&superAdminID); err != nil {
			log.Fatalf("SuperAdmin role not found: %v", err)
		}

		if err := db.Exec(
			"INSERT INTO users (username, email, full_name, password_hash, role_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
			"root.admin", adminEmail, "Bootstrap Admin", string(hash), superAdminID,
		).Error; err != nil {
			log.Fatalf("failed to insert bootstrap admin: %v", err)
		}

		fmt.Println("Seeded bootstrap admin:", adminEmail)
		fmt.Println("Default password is ChangeMe!123, change it after first signin")
	},
}
