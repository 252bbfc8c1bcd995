package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS dealerships (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(40),
		email VARCHAR(255),
		default_labor_rate NUMERIC(10,2) NOT NULL DEFAULT 85,
		currency_symbol VARCHAR(8) NOT NULL DEFAULT '$',
		default_terms TEXT,
		parts_markup_percent NUMERIC(6,2) NOT NULL DEFAULT 0,
		technicians_see_pricing BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS identities (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_dealership_id ON profiles (dealership_id);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(40),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_dealership_id ON customers (dealership_id);`,
	`CREATE TABLE IF NOT EXISTS rvs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		customer_id UUID NOT NULL REFERENCES customers(id),
		year INTEGER,
		make VARCHAR(120),
		model VARCHAR(120),
		vin VARCHAR(40),
		nickname VARCHAR(120),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rvs_customer_id ON rvs (customer_id);`,
	`CREATE TABLE IF NOT EXISTS parts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(80),
		description TEXT,
		price NUMERIC(10,2) NOT NULL,
		in_stock_qty INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parts_dealership_id ON parts (dealership_id);`,
	`CREATE TABLE IF NOT EXISTS work_orders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		rv_id UUID NOT NULL REFERENCES rvs(id),
		customer_id UUID NOT NULL REFERENCES customers(id),
		issue_description TEXT,
		labor_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
		labor_rate NUMERIC(10,2) NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL DEFAULT 'draft',
		technician_notes TEXT,
		manager_notes TEXT,
		technician_id UUID REFERENCES profiles(id),
		total_estimate NUMERIC(12,2) NOT NULL DEFAULT 0,
		approval_token VARCHAR(64),
		approval_token_expires_at TIMESTAMPTZ,
		customer_notes TEXT,
		approved_at TIMESTAMPTZ,
		rejected_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_work_orders_approval_token ON work_orders (approval_token) WHERE approval_token IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_dealership_id ON work_orders (dealership_id);`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_rv_id ON work_orders (rv_id);`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders (status);`,
	`CREATE TABLE IF NOT EXISTS work_order_parts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		part_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		unit_price NUMERIC(10,2) NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_parts_work_order_id ON work_order_parts (work_order_id);`,
	`CREATE TABLE IF NOT EXISTS work_order_photos (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		storage_path TEXT NOT NULL,
		filename VARCHAR(255),
		position INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_order_photos_work_order_id ON work_order_photos (work_order_id);`,
	`CREATE TABLE IF NOT EXISTS approval_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_order_id UUID NOT NULL REFERENCES work_orders(id),
		action VARCHAR(20) NOT NULL,
		delivery_method VARCHAR(20),
		ip_address VARCHAR(64),
		user_agent TEXT,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_approval_logs_work_order_id ON approval_logs (work_order_id);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES profiles(id),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		title VARCHAR(255) NOT NULL,
		message TEXT,
		type VARCHAR(40) NOT NULL,
		work_order_id UUID REFERENCES work_orders(id),
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id);`,
	`CREATE TABLE IF NOT EXISTS announcements (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		dealership_id UUID NOT NULL REFERENCES dealerships(id),
		title VARCHAR(255) NOT NULL,
		message TEXT,
		audience TEXT NOT NULL DEFAULT '["all"]',
		action_label VARCHAR(120),
		action_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_announcements_dealership_id ON announcements (dealership_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// AutoMigrate builds the schema from the models. Used for SQLite, where the
// postgres migration statements do not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Dealership{},
		&model.Identity{},
		&model.Profile{},
		&model.Customer{},
		&model.RV{},
		&model.Part{},
		&model.WorkOrder{},
		&model.WorkOrderPart{},
		&model.WorkOrderPhoto{},
		&model.ApprovalLog{},
		&model.Notification{},
		&model.Announcement{},
	)
}
