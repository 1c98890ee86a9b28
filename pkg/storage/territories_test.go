package storage

import (
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/pashagolub/pgxmock"
)

func TestAddTerritoryBaseline(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	acquired := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectExec("^INSERT INTO territories (.+) ON CONFLICT \\(name\\) DO NOTHING(.*)$").
		WithArgs("Detlas", &[]string{"Eden"}[0], acquired).
		WillReturnResult(pgconn.CommandTag{})

	if err := addTerritory(mock, "Detlas", "Eden", acquired); err != nil {
		t.Error(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAddTerritoryUnclaimedStoresNull(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	acquired := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectExec("^INSERT INTO territories (.+) ON CONFLICT \\(name\\) DO NOTHING(.*)$").
		WithArgs("Ragni", (*string)(nil), acquired).
		WillReturnResult(pgconn.CommandTag{})

	if err := addTerritory(mock, "Ragni", "", acquired); err != nil {
		t.Error(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestUpdateTerritory(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	acquired := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("^UPDATE territories SET guild = (.+), acquired = (.+) WHERE name = (.+)$").
		WithArgs(&[]string{"Rival"}[0], acquired, "Forest").
		WillReturnResult(pgconn.CommandTag{})

	if err := updateTerritory(mock, "Forest", "Rival", acquired); err != nil {
		t.Error(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetRewardConfigDefaults(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	// empty table falls back to the built-in defaults
	mock.ExpectQuery("^SELECT (.+) FROM reward_config ORDER BY id DESC LIMIT 1$").
		WillReturnRows(pgxmock.NewRows([]string{"id", "emeralds_per_raid", "emeralds_per_xp_reward", "created_at"}))

	config, err := getRewardConfig(mock)
	if err != nil {
		t.Error(err)
	}
	if config.EmeraldsPerRaid != 2048 || config.EmeraldsPerXPReward != 4096 {
		t.Error("expected built-in defaults when no config rows exist")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetRewardConfigLatestWins(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery("^SELECT (.+) FROM reward_config ORDER BY id DESC LIMIT 1$").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "emeralds_per_raid", "emeralds_per_xp_reward", "created_at"}).
				AddRow(7, 1024, 2048, created))

	config, err := getRewardConfig(mock)
	if err != nil {
		t.Error(err)
	}
	if config.ID != 7 || config.EmeraldsPerRaid != 1024 {
		t.Error("reward config mismatches what was returned from Postgres")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
