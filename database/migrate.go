package database

import (
	"fmt"

	"mandi-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/unique natural keys)
// - CHECK constraints guarding the stock invariant (postgres only)
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.IdempotencyKey{},
		&models.Farmer{},
		&models.Vegetable{},
		&models.Group{},
		&models.Customer{},
		&models.Stock{},
		&models.Sale{},
		&models.DeletedSale{},
		&models.Credit{},
		&models.CustomerLedger{},
		&models.CustomerHistory{},
		&models.StockHistory{},
		&models.SalesHistory{},
		&models.CreditHistory{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_customer_ledgers_customer_created ON customer_ledgers (customer_name, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_sales_customer_created ON sales (customer_name, created_at)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := []string{
			// 0 <= remaining_bags <= number_of_bags
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'stocks'::regclass
					  AND conname  = 'chk_stocks_remaining_bags'
				) THEN
					ALTER TABLE stocks
					ADD CONSTRAINT chk_stocks_remaining_bags
					CHECK (remaining_bags >= 0 AND remaining_bags <= number_of_bags);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'credits'::regclass
					  AND conname  = 'chk_credits_amounts_nonneg'
				) THEN
					ALTER TABLE credits
					ADD CONSTRAINT chk_credits_amounts_nonneg
					CHECK (credit_amount >= 0 AND less >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}
		return nil
	})
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
func EnsureAdmin(db *gorm.DB, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	user := models.User{Username: username, Role: models.RoleAdmin}
	if err := user.SetPassword(password); err != nil {
		return false, err
	}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
