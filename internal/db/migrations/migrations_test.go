package migrations

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func testMigrations() []*Migration {
	return []*Migration{
		{Name: "001_test", UpSQL: "CREATE TABLE test1 (id INTEGER);", DownSQL: "DROP TABLE test1;"},
		{Name: "002_test", UpSQL: "CREATE TABLE test2 (id INTEGER);", DownSQL: "DROP TABLE test2;"},
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 migrations, got %d", len(all))
	}

	seen := make(map[string]bool)
	for i, m := range all {
		if m.Name == "" || m.UpSQL == "" || m.DownSQL == "" {
			t.Errorf("Migration %d is incomplete: %+v", i, m)
		}
		if seen[m.Name] {
			t.Errorf("Duplicate migration name %s", m.Name)
		}
		seen[m.Name] = true
		if i > 0 && all[i-1].Name >= m.Name {
			t.Errorf("Migrations out of order: %s before %s", all[i-1].Name, m.Name)
		}
	}

	if !strings.Contains(InitialSchema.UpSQL, "launch_records") ||
		!strings.Contains(InitialSchema.UpSQL, "dashboard_stats") {
		t.Error("Initial schema must create launch_records and dashboard_stats")
	}
}

func TestMigratorInitialize(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectError bool
	}{
		{name: "successful initialization"},
		{name: "database error", err: sql.ErrConnDone, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMock(t)
			exp := mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err := migrator.Initialize()
			if tt.expectError != (err != nil) {
				t.Errorf("Initialize() error = %v, expectError %v", err, tt.expectError)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet expectations: %v", err)
			}
		})
	}
}

func TestMigratorGetAppliedMigrations(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectError   bool
		expectedNames []string
	}{
		{
			name: "no applied migrations",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
			},
		},
		{
			name: "multiple applied migrations",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"name"}).
					AddRow("001_initial_schema").
					AddRow("002_daily_stats_view")
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(rows)
			},
			expectedNames: []string{"001_initial_schema", "002_daily_stats_view"},
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
		{
			name: "row error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"name"}).
					AddRow("001_initial_schema").
					RowError(0, sql.ErrNoRows)
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(rows)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMock(t)
			tt.setupMock(mock)

			applied, err := migrator.GetAppliedMigrations()
			if tt.expectError != (err != nil) {
				t.Fatalf("GetAppliedMigrations() error = %v, expectError %v", err, tt.expectError)
			}
			if !tt.expectError {
				if len(applied) != len(tt.expectedNames) {
					t.Errorf("Expected %d applied migrations, got %d", len(tt.expectedNames), len(applied))
				}
				for _, name := range tt.expectedNames {
					if !applied[name] {
						t.Errorf("Expected migration %s to be applied", name)
					}
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet expectations: %v", err)
			}
		})
	}
}

func TestMigratorApplyMigration(t *testing.T) {
	migration := testMigrations()[0]

	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "successful apply",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE test1`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO schema_migrations`).
					WithArgs("001_test").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "begin error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
		{
			name: "execution error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE test1`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			expectError: true,
		},
		{
			name: "record error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE test1`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO schema_migrations`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMock(t)
			tt.setupMock(mock)

			err := migrator.ApplyMigration(migration)
			if tt.expectError != (err != nil) {
				t.Errorf("ApplyMigration() error = %v, expectError %v", err, tt.expectError)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet expectations: %v", err)
			}
		})
	}
}

func TestMigratorMigrate(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "applies all pending",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(sqlmock.NewRows([]string{"name"}))
				for _, table := range []string{"test1", "test2"} {
					mock.ExpectBegin()
					mock.ExpectExec(`CREATE TABLE ` + table).WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectExec(`INSERT INTO schema_migrations`).WillReturnResult(sqlmock.NewResult(1, 1))
					mock.ExpectCommit()
				}
			},
		},
		{
			name: "skips applied",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_test"))
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE test2`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO schema_migrations`).
					WithArgs("002_test").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "initialization error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
		{
			name: "stops at failing migration",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE test1`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMock(t)
			tt.setupMock(mock)

			err := migrator.Migrate(testMigrations())
			if tt.expectError != (err != nil) {
				t.Errorf("Migrate() error = %v, expectError %v", err, tt.expectError)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet expectations: %v", err)
			}
		})
	}
}

func TestMigratorRollback(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "rolls back the last applied",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_test").AddRow("002_test"))
				mock.ExpectBegin()
				mock.ExpectExec(`DROP TABLE test2`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM schema_migrations WHERE name`).
					WithArgs("002_test").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "nothing applied",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
			},
			expectError: true,
		},
		{
			name: "down error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT name FROM schema_migrations`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_test"))
				mock.ExpectBegin()
				mock.ExpectExec(`DROP TABLE test1`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMock(t)
			tt.setupMock(mock)

			err := migrator.Rollback(testMigrations())
			if tt.expectError != (err != nil) {
				t.Errorf("Rollback() error = %v, expectError %v", err, tt.expectError)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet expectations: %v", err)
			}
		})
	}
}
