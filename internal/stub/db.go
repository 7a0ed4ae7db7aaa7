package stub

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// OpenDB opens postgres when a DATABASE_URL is set, otherwise a local sqlite
// file, and migrates the schema either way.
func OpenDB(ctx context.Context, databaseURL, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if databaseURL != "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("unwrap sql.DB: %w", err)
		}
		configurePool(sqlDB)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}

	if err := db.AutoMigrate(&User{}, &Token{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Seed fills an empty catalog with a few demo products so the CLI has
// something to browse on first run.
func Seed(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	demo := []Product{
		{Name: "Wireless Headphones", Description: "Over-ear, 30h battery", Price: 2499, Category: "electronics", Subcategory: "audio", Stock: 25, Rating: 4.3},
		{Name: "Cotton T-Shirt", Description: "Plain white, unisex", Price: 399, Category: "fashion", Subcategory: "tops", Stock: 120, Rating: 4.0},
		{Name: "Face Serum", Description: "Vitamin C, 30ml", Price: 649, Category: "beauty", Subcategory: "skincare", Stock: 60, Rating: 4.5},
		{Name: "Mixer Grinder", Description: "750W, 3 jars", Price: 3199, Category: "appliances", Subcategory: "kitchen", Stock: 14, Rating: 4.1},
	}
	return db.Create(&demo).Error
}
