package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	dbFileName = "plex.db"
)

type Store struct {
	db *sql.DB
}

// Device is the cached copy of an account device. Tokens are never stored.
type Device struct {
	ClientIdentifier string    `json:"clientIdentifier"`
	Name             string    `json:"name"`
	Product          string    `json:"product"`
	ProductVersion   string    `json:"productVersion"`
	Platform         string    `json:"platform"`
	Provides         []string  `json:"provides"`
	Connections      []string  `json:"connections"`
	LastSeenAt       time.Time `json:"lastSeenAt,omitzero"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasRole reports whether the device advertises role.
func (d Device) HasRole(role string) bool {
	for _, p := range d.Provides {
		if p == role {
			return true
		}
	}
	return false
}

// ServerCheck is the last identity and version seen for a server.
type ServerCheck struct {
	MachineIdentifier string
	FriendlyName      string
	Version           string
	URL               string
	CheckedAt         time.Time
}

func DBPath(storeDir string) string {
	return filepath.Join(storeDir, dbFileName)
}

func Open(storeDir string) (*Store, error) {
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", DBPath(storeDir)))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS devices (
	client_identifier TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	product TEXT NOT NULL,
	product_version TEXT NOT NULL,
	platform TEXT NOT NULL,
	provides TEXT NOT NULL,
	connections TEXT NOT NULL,
	last_seen_at TEXT,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_devices_name ON devices(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS server_checks (
	machine_identifier TEXT PRIMARY KEY,
	friendly_name TEXT,
	version TEXT NOT NULL,
	url TEXT NOT NULL,
	checked_at TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

const upsertDeviceSQL = `
INSERT INTO devices (
	client_identifier, name, product, product_version, platform,
	provides, connections, last_seen_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(client_identifier) DO UPDATE SET
	name=excluded.name,
	product=excluded.product,
	product_version=excluded.product_version,
	platform=excluded.platform,
	provides=excluded.provides,
	connections=excluded.connections,
	last_seen_at=excluded.last_seen_at,
	updated_at=excluded.updated_at
`

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func upsertDevice(db execer, d *Device) error {
	d.UpdatedAt = time.Now().UTC()
	conns, err := json.Marshal(d.Connections)
	if err != nil {
		return fmt.Errorf("encode connections: %w", err)
	}
	_, err = db.Exec(upsertDeviceSQL,
		d.ClientIdentifier,
		d.Name,
		d.Product,
		d.ProductVersion,
		d.Platform,
		strings.Join(d.Provides, ","),
		string(conns),
		nullTime(d.LastSeenAt),
		d.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert device %s: %w", d.ClientIdentifier, err)
	}
	return nil
}

func (s *Store) UpsertDevice(d *Device) error {
	return upsertDevice(s.db, d)
}

// ReplaceDevices makes devices the whole inventory. Devices no longer
// registered with the account are dropped.
func (s *Store) ReplaceDevices(devices []Device) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM devices`); err != nil {
		return fmt.Errorf("clear devices: %w", err)
	}
	for i := range devices {
		if err := upsertDevice(tx, &devices[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit devices: %w", err)
	}
	return nil
}

const selectDeviceSQL = `SELECT client_identifier, name, product, product_version, platform, provides, connections, last_seen_at, updated_at FROM devices`

// ListDevices returns the cached devices ordered by name. A non-empty role
// keeps only devices that provide it.
func (s *Store) ListDevices(role string) ([]Device, error) {
	query := selectDeviceSQL
	args := []interface{}{}
	if role != "" {
		query += ` WHERE ',' || provides || ',' LIKE '%,' || ? || ',%'`
		args = append(args, role)
	}
	query += " ORDER BY name COLLATE NOCASE, client_identifier"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetDevice returns nil when the device is not cached.
func (s *Store) GetDevice(clientIdentifier string) (*Device, error) {
	d, err := scanDevice(s.db.QueryRow(selectDeviceSQL+` WHERE client_identifier = ?`, clientIdentifier))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// FindDevice looks a device up by client identifier, then by name
// ignoring case. It returns nil when neither matches.
func (s *Store) FindDevice(ref string) (*Device, error) {
	d, err := s.GetDevice(ref)
	if err != nil || d != nil {
		return d, err
	}
	d, err = scanDevice(s.db.QueryRow(selectDeviceSQL+` WHERE name = ? COLLATE NOCASE ORDER BY updated_at DESC LIMIT 1`, ref))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row scanner) (*Device, error) {
	var d Device
	var provides, conns, updated string
	var lastSeen sql.NullString
	if err := row.Scan(&d.ClientIdentifier, &d.Name, &d.Product, &d.ProductVersion, &d.Platform, &provides, &conns, &lastSeen, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}
	if provides != "" {
		d.Provides = strings.Split(provides, ",")
	}
	if err := json.Unmarshal([]byte(conns), &d.Connections); err != nil {
		return nil, fmt.Errorf("decode connections for %s: %w", d.ClientIdentifier, err)
	}
	if lastSeen.Valid {
		d.LastSeenAt = parseTime(lastSeen.String)
	}
	d.UpdatedAt = parseTime(updated)
	return &d, nil
}

// GetServerCheck returns nil when the server has not been checked before.
func (s *Store) GetServerCheck(machineIdentifier string) (*ServerCheck, error) {
	row := s.db.QueryRow(`SELECT machine_identifier, friendly_name, version, url, checked_at FROM server_checks WHERE machine_identifier = ?`, machineIdentifier)
	var c ServerCheck
	var name sql.NullString
	var checked string
	if err := row.Scan(&c.MachineIdentifier, &name, &c.Version, &c.URL, &checked); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get server check: %w", err)
	}
	c.FriendlyName = name.String
	c.CheckedAt = parseTime(checked)
	return &c, nil
}

func (s *Store) RecordServerCheck(c *ServerCheck) error {
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
INSERT INTO server_checks (machine_identifier, friendly_name, version, url, checked_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(machine_identifier) DO UPDATE SET
	friendly_name=excluded.friendly_name,
	version=excluded.version,
	url=excluded.url,
	checked_at=excluded.checked_at
`, c.MachineIdentifier, nullString(c.FriendlyName), c.Version, c.URL, c.CheckedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record server check: %w", err)
	}
	return nil
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
