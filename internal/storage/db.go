package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// Database is the sqlite backend.
type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&expenseRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Load(ctx context.Context) ([]expense.Expense, error) {
	var records []expenseRecord
	if err := d.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	out := make([]expense.Expense, 0, len(records))
	for _, r := range records {
		e, err := FromRow(r.row())
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", r.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Save replaces every stored expense with list inside one transaction.
func (d *Database) Save(ctx context.Context, list []expense.Expense) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&expenseRecord{}).Error; err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		records := make([]expenseRecord, len(list))
		for i, e := range list {
			records[i] = newRecord(i, e)
		}
		return tx.CreateInBatches(&records, 200).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save expenses: %w", err)
	}
	return nil
}

func (d *Database) Append(ctx context.Context, e expense.Expense) error {
	var last int
	row := d.db.WithContext(ctx).Model(&expenseRecord{}).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&last); err != nil {
		return fmt.Errorf("failed to find last position: %w", err)
	}
	rec := newRecord(last+1, e)
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
