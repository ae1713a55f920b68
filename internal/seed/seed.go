package seed

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultProfitMargin      = "15"
	defaultAdvancePercentage = "10"
	defaultWelderDailyRate   = "500"
	defaultHelperDailyRate   = "300"
)

type staffRole struct {
	name   string
	salary string
}

type inventoryItem struct {
	name      string
	itemType  string
	dimension string
	unit      string
	baseRate  string
}

var defaultStaffRoles = []staffRole{
	{name: "Welder", salary: defaultWelderDailyRate},
	{name: "Helper", salary: defaultHelperDailyRate},
}

var sampleInventory = []inventoryItem{
	{name: "MS Square Pipe 40x40", itemType: "Square Pipe", dimension: "40x40", unit: "ft", baseRate: "85"},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, eris.Wrap(err, "begin seed transaction")
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, role := range defaultStaffRoles {
		if err := ensureStaffRole(ctx, tx, role, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, item := range sampleInventory {
		if err := ensureInventoryItem(ctx, tx, item, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, eris.Wrap(err, "commit seed transaction")
	}

	zap.L().Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	return stats, nil
}

// ensureSettings creates the singleton and fills any column left NULL with
// its default, leaving values an operator already set alone.
func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO settings (id, profit_margin, advance_percentage, welder_daily_rate, helper_daily_rate)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, defaultProfitMargin, defaultAdvancePercentage, defaultWelderDailyRate, defaultHelperDailyRate)
	if err != nil {
		return eris.Wrap(err, "insert settings singleton")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		stats.Inserts++
		return nil
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE settings
		SET
			profit_margin = COALESCE(profit_margin, ?),
			advance_percentage = COALESCE(advance_percentage, ?),
			welder_daily_rate = COALESCE(welder_daily_rate, ?),
			helper_daily_rate = COALESCE(helper_daily_rate, ?)
		WHERE id = 1 AND (
			profit_margin IS NULL OR
			advance_percentage IS NULL OR
			welder_daily_rate IS NULL OR
			helper_daily_rate IS NULL
		)
	`, defaultProfitMargin, defaultAdvancePercentage, defaultWelderDailyRate, defaultHelperDailyRate)
	if err != nil {
		return eris.Wrap(err, "fill settings defaults")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		stats.Updates++
	}
	return nil
}

func ensureStaffRole(ctx context.Context, tx *sql.Tx, role staffRole, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM staff_roles WHERE role_name = ? LIMIT 1)`, role.name).Scan(&exists); err != nil {
		return eris.Wrapf(err, "check staff role %q existence", role.name)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO staff_roles (role_name, default_salary)
		VALUES (?, ?)
	`, role.name, role.salary); err != nil {
		return eris.Wrapf(err, "insert staff role %q", role.name)
	}
	stats.Inserts++
	return nil
}

func ensureInventoryItem(ctx context.Context, tx *sql.Tx, item inventoryItem, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM inventory
			WHERE item_type = ? AND dimension = ?
			LIMIT 1
		)
	`, item.itemType, item.dimension).Scan(&exists); err != nil {
		return eris.Wrapf(err, "check inventory %s %s existence", item.itemType, item.dimension)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO inventory (item_name, item_type, dimension, unit, base_rate)
		VALUES (?, ?, ?, ?, ?)
	`, item.name, item.itemType, item.dimension, item.unit, item.baseRate); err != nil {
		return eris.Wrapf(err, "insert inventory item %q", item.name)
	}
	stats.Inserts++
	return nil
}
