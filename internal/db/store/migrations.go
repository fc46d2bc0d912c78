// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"database/sql"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB, sqlDB *sql.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: Workshops and participants
		{
			ID: "001_workshops",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Workshop{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Participant{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("workshops", "participants")
			},
		},

		// Migration 002: Identity tags and texts
		{
			ID: "002_identity_data",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&IdentityTag{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&IdentityText{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("identity_tags", "identity_texts")
			},
		},

		// Migration 003: FTS5 virtual table for identity free text
		{
			ID: "003_identity_texts_fts",
			Migrate: func(tx *gorm.DB) error {
				sqls := []string{
					`CREATE VIRTUAL TABLE IF NOT EXISTS identity_texts_fts USING fts5(
						text,
						content='identity_texts',
						content_rowid='id'
					)`,
					`CREATE TRIGGER IF NOT EXISTS identity_texts_ai AFTER INSERT ON identity_texts BEGIN
						INSERT INTO identity_texts_fts(rowid, text)
						VALUES (new.id, new.text);
					END`,
					`CREATE TRIGGER IF NOT EXISTS identity_texts_ad AFTER DELETE ON identity_texts BEGIN
						INSERT INTO identity_texts_fts(identity_texts_fts, rowid, text)
						VALUES('delete', old.id, old.text);
					END`,
					`CREATE TRIGGER IF NOT EXISTS identity_texts_au AFTER UPDATE ON identity_texts BEGIN
						INSERT INTO identity_texts_fts(identity_texts_fts, rowid, text)
						VALUES('delete', old.id, old.text);
						INSERT INTO identity_texts_fts(rowid, text)
						VALUES (new.id, new.text);
					END`,
				}
				for _, q := range sqls {
					if _, err := sqlDB.Exec(q); err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				_, err := sqlDB.Exec(`DROP TABLE IF EXISTS identity_texts_fts`)
				return err
			},
		},
	})

	return m.Migrate()
}
