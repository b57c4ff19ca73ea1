package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/infrastructure/config"
)

// Database wraps the gorm connection with pool management
type Database struct {
	DB     *gorm.DB
	logger *zap.Logger
}

// ConnectionStats exposes connection pool statistics
type ConnectionStats struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
}

// NewDatabase opens a PostgreSQL connection with pooling configured
func NewDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	gormLogLevel := gormlogger.Warn

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormLogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return &Database{DB: db, logger: logger}, nil
}

// AutoMigrate creates or updates the schema for all finance aggregates
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&finance.Invoice{},
		&finance.Payment{},
		&finance.BankAccount{},
		&finance.BankTransaction{},
		&finance.PettyCashAccount{},
		&finance.PettyCashTransaction{},
		&finance.Vendor{},
		&finance.PurchaseOrder{},
		&finance.Expense{},
		&finance.Budget{},
		&finance.ProjectCost{},
		&finance.CommissionStructure{},
		&finance.Commission{},
		&finance.FinancialPeriod{},
		&finance.TaxConfiguration{},
	)
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats returns current pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, err
	}
	s := sqlDB.Stats()
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}, nil
}

// Ping verifies the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
