package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with roles, a location chain, a company, a root department and an admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"confirmation_tokens", "department_hierarchy", "users", "departments", "companies", "towns", "regions", "cities"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		for _, role := range []string{"Admin", "Manager", "Employee"} {
			var exists int
			if err := db.Raw("SELECT 1 FROM roles WHERE name = ?", role).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO roles (name) VALUES (?)", role).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", role, err)
			}
			fmt.Println("Seeded role:", role)
		}

		cityID := seedLookup(db, "cities", "Jakarta", "INSERT INTO cities (name, created_at) VALUES (?, now())")
		regionID := seedChild(db, "regions", "Jakarta Selatan", "city_id", cityID, "INSERT INTO regions (name, city_id, created_at) VALUES (?, ?, now())")
		townID := seedChild(db, "towns", "Kebayoran Baru", "region_id", regionID, "INSERT INTO towns (name, region_id, created_at) VALUES (?, ?, now())")

		companyTypeID := seedLookup(db, "company_types", "holding", "INSERT INTO company_types (name) VALUES (?)")
		departmentTypeID := seedLookup(db, "department_types", "office", "INSERT INTO department_types (name) VALUES (?)")

		var companyID int64
		if err := db.Raw("SELECT id FROM companies WHERE name = ?", "Acme Group").Row().Scan(&companyID); err != nil {
			if err := db.Exec(
				"INSERT INTO companies (name, short_name, type_id, town_id, address, active, created_at) VALUES (?, ?, ?, ?, ?, true, now())",
				"Acme Group", "ACME", companyTypeID, townID, "Jl. Sudirman 1").Error; err != nil {
				log.Fatalf("failed to insert company: %v", err)
			}
			if err := db.Raw("SELECT id FROM companies WHERE name = ?", "Acme Group").Row().Scan(&companyID); err != nil {
				log.Fatalf("failed to lookup company id: %v", err)
			}
			fmt.Println("Seeded company: Acme Group")
		}

		var departmentID int64
		if err := db.Raw("SELECT id FROM departments WHERE name = ?", "Head Office").Row().Scan(&departmentID); err != nil {
			if err := db.Exec(
				"INSERT INTO departments (name, company_id, type_id, town_id, address, active, created_at) VALUES (?, ?, ?, ?, ?, true, now())",
				"Head Office", companyID, departmentTypeID, townID, "Jl. Sudirman 1").Error; err != nil {
				log.Fatalf("failed to insert department: %v", err)
			}
			if err := db.Raw("SELECT id FROM departments WHERE name = ?", "Head Office").Row().Scan(&departmentID); err != nil {
				log.Fatalf("failed to lookup department id: %v", err)
			}
			fmt.Println("Seeded department: Head Office")
		}

		adminEmail := "admin@mail.com"
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row().Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
			return
		}

		var adminRoleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", "Admin").Row().Scan(&adminRoleID); err != nil {
			log.Fatalf("failed to lookup Admin role: %v", err)
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("Admin1+pass"), bcrypt.DefaultCost)
		if err := db.Exec(
			"INSERT INTO users (email, first_name, last_name, password_hash, role_id, department_id, active, enabled, created_at) VALUES (?, ?, ?, ?, ?, ?, true, true, now())",
			adminEmail, "Ada", "Admin", string(hash), adminRoleID, departmentID).Error; err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", adminEmail)
	},
}

func seedLookup(db *gorm.DB, table, name, insert string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM "+table+" WHERE name = ?", name).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec(insert, name).Error; err != nil {
		log.Fatalf("failed to insert into %s: %v", table, err)
	}
	if err := db.Raw("SELECT id FROM "+table+" WHERE name = ?", name).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup %s id: %v", table, err)
	}
	fmt.Printf("Seeded %s: %s\n", table, name)
	return id
}

func seedChild(db *gorm.DB, table, name, parentColumn string, parentID int64, insert string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM "+table+" WHERE name = ? AND "+parentColumn+" = ?", name, parentID).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec(insert, name, parentID).Error; err != nil {
		log.Fatalf("failed to insert into %s: %v", table, err)
	}
	if err := db.Raw("SELECT id FROM "+table+" WHERE name = ? AND "+parentColumn+" = ?", name, parentID).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup %s id: %v", table, err)
	}
	fmt.Printf("Seeded %s: %s\n", table, name)
	return id
}
