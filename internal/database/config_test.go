package database

import (
	"strings"
	"testing"

	"stocktracker/internal/config"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name       string
		driver     string
		wantErr    bool
		wantDSN    string
		wantMig    string
		wantSource string
	}{
		{
			name:       "sqlite",
			driver:     "sqlite",
			wantDSN:    "file:data/users.db?_foreign_keys=on",
			wantMig:    "sqlite3://data/users.db",
			wantSource: "file://migrations/sqlite",
		},
		{
			name:       "postgres",
			driver:     "postgres",
			wantDSN:    "host=db port=5432 user=st password=p@ss dbname=st sslmode=disable",
			wantMig:    "postgres://st:p%40ss@db:5432/st?sslmode=disable",
			wantSource: "file://migrations/postgres",
		},
		{
			name:    "unsupported",
			driver:  "mysql",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &config.Config{
				DBDriver:   tt.driver,
				SQLitePath: "data/users.db",
				DBHost:     "db",
				DBPort:     "5432",
				DBUser:     "st",
				DBPassword: "p@ss",
				DBName:     "st",
				DBSSLMode:  "disable",
			}
			cfg, err := NewConfig(app)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported driver")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConfig: %v", err)
			}
			if !strings.HasPrefix(cfg.DSN(), tt.wantDSN) {
				t.Errorf("DSN() = %q, want prefix %q", cfg.DSN(), tt.wantDSN)
			}
			if !strings.HasPrefix(cfg.MigrateURL(), tt.wantMig) {
				t.Errorf("MigrateURL() = %q, want prefix %q", cfg.MigrateURL(), tt.wantMig)
			}
			if cfg.MigrationsSource() != tt.wantSource {
				t.Errorf("MigrationsSource() = %q, want %q", cfg.MigrationsSource(), tt.wantSource)
			}
		})
	}
}
