// Package store persists settings, the staff-role and inventory catalogs,
// clients and projects with their saved estimates.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/fabestimate/internal/estimate"
)

// StatusEstimateUpdated is stamped on a project whenever its estimate is saved.
const StatusEstimateUpdated = "Estimate Updated"

var (
	ErrNotFound        = eris.New("not found")
	ErrVersionConflict = eris.New("estimate was modified concurrently")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New returns a Store backed by db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Client is a customer an estimate is prepared for.
type Client struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// Project is a job for a client. Estimate is nil until one is saved.
type Project struct {
	ID          int64             `json:"id"`
	ClientID    int64             `json:"client_id"`
	ClientName  string            `json:"client_name"`
	ProjectType string            `json:"project_type"`
	Status      string            `json:"status"`
	Estimate    *estimate.Request `json:"internal_estimate"`
	Version     int64             `json:"version"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func numberArg(n estimate.Number) any {
	if !n.IsSet() {
		return nil
	}
	return n.String()
}

func numberFrom(s sql.NullString) estimate.Number {
	if !s.Valid {
		return estimate.Number{}
	}
	return estimate.ParseNumber(s.String)
}

// Settings returns the settings singleton. A missing row yields empty
// settings so every field falls back to its default.
func (s *Store) Settings(ctx context.Context) (estimate.Settings, error) {
	var margin, advance, primary, helper sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT profit_margin, advance_percentage, welder_daily_rate, helper_daily_rate
		FROM settings
		WHERE id = 1
	`).Scan(&margin, &advance, &primary, &helper)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate.Settings{}, nil
		}
		return estimate.Settings{}, eris.Wrap(err, "query settings")
	}

	return estimate.Settings{
		DefaultProfitMarginPercent: numberFrom(margin),
		AdvancePercent:             numberFrom(advance),
		LegacyPrimaryDailyRate:     numberFrom(primary),
		LegacyHelperDailyRate:      numberFrom(helper),
	}, nil
}

// UpdateSettings writes the settings singleton. Unset fields are stored as
// NULL.
func (s *Store) UpdateSettings(ctx context.Context, st estimate.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, profit_margin, advance_percentage, welder_daily_rate, helper_daily_rate)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profit_margin = excluded.profit_margin,
			advance_percentage = excluded.advance_percentage,
			welder_daily_rate = excluded.welder_daily_rate,
			helper_daily_rate = excluded.helper_daily_rate,
			updated_at = CURRENT_TIMESTAMP
	`,
		numberArg(st.DefaultProfitMarginPercent),
		numberArg(st.AdvancePercent),
		numberArg(st.LegacyPrimaryDailyRate),
		numberArg(st.LegacyHelperDailyRate),
	)
	if err != nil {
		return eris.Wrap(err, "update settings")
	}
	return nil
}

// StaffRoles lists the role catalog in creation order.
func (s *Store) StaffRoles(ctx context.Context) ([]estimate.StaffRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role_name, default_salary
		FROM staff_roles
		ORDER BY id
	`)
	if err != nil {
		return nil, eris.Wrap(err, "query staff roles")
	}
	defer rows.Close()

	roles := make([]estimate.StaffRole, 0)
	for rows.Next() {
		var role estimate.StaffRole
		var salary string
		if err := rows.Scan(&role.Name, &salary); err != nil {
			return nil, eris.Wrap(err, "scan staff role")
		}
		role.DefaultSalary = estimate.ParseNumber(salary).Decimal()
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate staff roles")
	}
	return roles, nil
}

// CreateStaffRole adds a role to the catalog.
func (s *Store) CreateStaffRole(ctx context.Context, role estimate.StaffRole) error {
	name := strings.TrimSpace(role.Name)
	if name == "" {
		return eris.Wrap(estimate.ErrInvalidLaborRole, "staff role name is required")
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_roles (role_name, default_salary) VALUES (?, ?)
	`, name, role.DefaultSalary.String()); err != nil {
		return eris.Wrapf(err, "insert staff role %q", name)
	}
	return nil
}

const inventoryColumns = `id, item_name, item_type, dimension, unit, base_rate`

type scanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(sc scanner) (estimate.CatalogItem, error) {
	var item estimate.CatalogItem
	var rate string
	if err := sc.Scan(&item.ID, &item.Name, &item.Type, &item.Dimension, &item.Unit, &rate); err != nil {
		return estimate.CatalogItem{}, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return estimate.CatalogItem{}, eris.Wrapf(err, "inventory item %d has base rate %q", item.ID, rate)
	}
	item.BaseRate = d
	return item, nil
}

// Inventory lists the catalog grouped by item type.
func (s *Store) Inventory(ctx context.Context) ([]estimate.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory
		ORDER BY item_type, dimension, id
	`)
	if err != nil {
		return nil, eris.Wrap(err, "query inventory")
	}
	defer rows.Close()

	items := make([]estimate.CatalogItem, 0)
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan inventory item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate inventory")
	}
	return items, nil
}

// FindInventory looks up the catalog item for an item type and dimension.
func (s *Store) FindInventory(ctx context.Context, itemType, dimension string) (estimate.CatalogItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory
		WHERE item_type = ? AND dimension = ?
	`, itemType, dimension)

	item, err := scanCatalogItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate.CatalogItem{}, eris.Wrapf(ErrNotFound, "inventory %s %s", itemType, dimension)
		}
		return estimate.CatalogItem{}, eris.Wrap(err, "query inventory item")
	}
	return item, nil
}

// CreateInventoryItem adds a catalog item and returns its id.
func (s *Store) CreateInventoryItem(ctx context.Context, item estimate.CatalogItem) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (item_name, item_type, dimension, unit, base_rate)
		VALUES (?, ?, ?, ?, ?)
	`, item.Name, item.Type, item.Dimension, item.Unit, item.BaseRate.String())
	if err != nil {
		return 0, eris.Wrapf(err, "insert inventory item %q", item.Name)
	}
	return res.LastInsertId()
}

// CreateClient inserts a client and returns its id.
func (s *Store) CreateClient(ctx context.Context, c Client) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, phone, address) VALUES (?, ?, ?)
	`, c.Name, c.Phone, c.Address)
	if err != nil {
		return 0, eris.Wrap(err, "insert client")
	}
	return res.LastInsertId()
}

// Client returns the client with id.
func (s *Store) Client(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address, created_at
		FROM clients
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, eris.Wrapf(ErrNotFound, "client %d", id)
		}
		return Client{}, eris.Wrap(err, "query client")
	}
	return c, nil
}

// CreateProject opens a draft project for a client and returns its id.
func (s *Store) CreateProject(ctx context.Context, clientID int64, projectType string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (client_id, project_type) VALUES (?, ?)
	`, clientID, projectType)
	if err != nil {
		return 0, eris.Wrapf(err, "insert project for client %d", clientID)
	}
	return res.LastInsertId()
}

const projectColumns = `
	p.id, p.client_id, c.name, p.project_type, p.status,
	p.internal_estimate, p.version, p.created_at, p.updated_at`

func scanProject(sc scanner) (Project, error) {
	var p Project
	var snapshot sql.NullString
	if err := sc.Scan(
		&p.ID, &p.ClientID, &p.ClientName, &p.ProjectType, &p.Status,
		&snapshot, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Project{}, err
	}
	if snapshot.Valid && snapshot.String != "" {
		var req estimate.Request
		if err := json.Unmarshal([]byte(snapshot.String), &req); err != nil {
			return Project{}, eris.Wrapf(err, "decode estimate of project %d", p.ID)
		}
		p.Estimate = &req
	}
	return p, nil
}

// Project returns the project with id, its client name and saved estimate.
func (s *Store) Project(ctx context.Context, id int64) (Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		JOIN clients c ON c.id = p.client_id
		WHERE p.id = ?
	`, id)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, eris.Wrapf(ErrNotFound, "project %d", id)
		}
		return Project{}, eris.Wrap(err, "query project")
	}
	return p, nil
}

// ListProjects returns projects newest first. A non-empty query filters on
// client name, project type or status.
func (s *Store) ListProjects(ctx context.Context, query string) ([]Project, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		JOIN clients c ON c.id = p.client_id
		WHERE (? = '' OR c.name LIKE ? OR p.project_type LIKE ? OR p.status LIKE ?)
		ORDER BY datetime(p.created_at) DESC, p.id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, eris.Wrap(err, "query projects")
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan project")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate projects")
	}
	return projects, nil
}

// SaveEstimate stores req (compacted) as the project's estimate when the
// project is still at expectedVersion, and returns the new version. A stale
// version yields ErrVersionConflict and leaves the row untouched.
func (s *Store) SaveEstimate(ctx context.Context, projectID int64, req estimate.Request, expectedVersion int64) (int64, error) {
	snapshot, err := json.Marshal(req.Compact())
	if err != nil {
		return 0, eris.Wrap(err, "encode estimate")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET
			internal_estimate = ?,
			status = ?,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`, string(snapshot), StatusEstimateUpdated, projectID, expectedVersion)
	if err != nil {
		return 0, eris.Wrapf(err, "update estimate of project %d", projectID)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "read affected rows")
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = ?)`, projectID).Scan(&exists); err != nil {
			return 0, eris.Wrap(err, "check project existence")
		}
		if !exists {
			return 0, eris.Wrapf(ErrNotFound, "project %d", projectID)
		}
		return 0, eris.Wrapf(ErrVersionConflict, "project %d is no longer at version %d", projectID, expectedVersion)
	}

	return expectedVersion + 1, nil
}
