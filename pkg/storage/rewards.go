package storage

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
)

// Reward amounts are versioned rows; admins append a new version instead of
// editing in place, so a job mid-tick always reads a consistent record.

func (psqlInterface *PsqlInterface) GetRewardConfig() (*RewardConfig, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getRewardConfig(conn.Conn())
}

func getRewardConfig(conn PgxIface) (*RewardConfig, error) {
	var configs []*RewardConfig
	err := pgxscan.Select(context.Background(), conn, &configs,
		"SELECT * FROM reward_config ORDER BY id DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		// defaults apply until an admin writes the first version
		return &RewardConfig{EmeraldsPerRaid: 2048, EmeraldsPerXPReward: 4096}, nil
	}
	return configs[0], nil
}

func (psqlInterface *PsqlInterface) AddRewardConfig(emeraldsPerRaid, emeraldsPerXPReward int) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return addRewardConfig(conn.Conn(), emeraldsPerRaid, emeraldsPerXPReward)
}

func addRewardConfig(conn PgxIface, emeraldsPerRaid, emeraldsPerXPReward int) error {
	_, err := conn.Exec(context.Background(),
		"INSERT INTO reward_config (emeralds_per_raid, emeralds_per_xp_reward) VALUES ($1, $2);",
		emeraldsPerRaid, emeraldsPerXPReward)
	return err
}
