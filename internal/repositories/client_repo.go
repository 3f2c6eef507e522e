package repositories

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/config"
	"annexe9-backend/internal/domain"
)

// Client is a reusable client identity block kept in the directory.
type Client struct {
	ID        uuid.UUID          `json:"id"`
	Block     domain.ClientBlock `json:"block"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type ClientRepository struct {
	DB *sql.DB
}

func (r ClientRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const clientColumns = `id, title, name, address, address_number, postal_code, locality, phone, gsm, created_at, updated_at`

func scanClient(row rowScanner) (Client, error) {
	var (
		c     Client
		idStr string
		title string
	)
	err := row.Scan(
		&idStr, &title, &c.Block.Name, &c.Block.Address, &c.Block.AddressNumber,
		&c.Block.PostalCode, &c.Block.Locality, &c.Block.Phone, &c.Block.GSM,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Client{}, err
	}
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return Client{}, err
	}
	c.Block.Title = domain.Title(title)
	return c, nil
}

func (r ClientRepository) Create(c Client) error {
	_, err := r.db().Exec(`
		INSERT INTO clients (id, title, name, address, address_number, postal_code, locality, phone, gsm, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID.String(), string(c.Block.Title), c.Block.Name, c.Block.Address, c.Block.AddressNumber,
		c.Block.PostalCode, c.Block.Locality, c.Block.Phone, c.Block.GSM,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r ClientRepository) GetByID(id uuid.UUID) (Client, error) {
	row := r.db().QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id=? LIMIT 1`, id.String())
	return scanClient(row)
}

func (r ClientRepository) List(search string) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE name LIKE ? OR locality LIKE ?`
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY name`

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r ClientRepository) Update(c Client) error {
	res, err := r.db().Exec(`
		UPDATE clients SET title=?, name=?, address=?, address_number=?, postal_code=?, locality=?, phone=?, gsm=?, updated_at=?
		WHERE id=?`,
		string(c.Block.Title), c.Block.Name, c.Block.Address, c.Block.AddressNumber,
		c.Block.PostalCode, c.Block.Locality, c.Block.Phone, c.Block.GSM,
		c.UpdatedAt, c.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r ClientRepository) Delete(id uuid.UUID) error {
	res, err := r.db().Exec(`DELETE FROM clients WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
