// Package database provides the SQLite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── entries/         # Key-value entries backing storage.Backend
//	└── audit/           # Refresh event log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(path)
//	backend := entries.NewRepository(db.DB)
//	events := audit.NewRepository(db.DB)
package database
