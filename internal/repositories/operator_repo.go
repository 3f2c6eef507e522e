package repositories

import (
	"database/sql"
	"errors"
	"time"

	"annexe9-backend/internal/config"
	"annexe9-backend/internal/domain"
)

// OperatorRepository manages the single operator_config row (id=1). The row
// replaces the old implicit singleton: callers load it and pass the value on.
type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// Get loads the operator config, falling back to the documented default when
// the row does not exist yet.
func (r OperatorRepository) Get() (domain.OperatorConfig, error) {
	var (
		cfg      domain.OperatorConfig
		title    string
		authDate sql.NullTime
	)
	err := r.db().QueryRow(`
		SELECT title, name, address, address_number, postal_code, locality,
		       bce_number, authorization_number, authorization_date, updated_at
		FROM operator_config WHERE id=1 LIMIT 1`).Scan(
		&title, &cfg.Name, &cfg.Address, &cfg.AddressNumber, &cfg.PostalCode, &cfg.Locality,
		&cfg.BCENumber, &cfg.AuthorizationNumber, &authDate, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultOperatorConfig(), nil
	}
	if err != nil {
		return domain.OperatorConfig{}, err
	}
	cfg.Title = domain.Title(title)
	cfg.AuthorizationDate = nullTimePtr(authDate)
	return cfg, nil
}

// Save upserts the single row.
func (r OperatorRepository) Save(cfg domain.OperatorConfig) error {
	_, err := r.db().Exec(`
		INSERT INTO operator_config
			(id, title, name, address, address_number, postal_code, locality,
			 bce_number, authorization_number, authorization_date, updated_at)
		VALUES (1,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			title=VALUES(title), name=VALUES(name), address=VALUES(address),
			address_number=VALUES(address_number), postal_code=VALUES(postal_code),
			locality=VALUES(locality), bce_number=VALUES(bce_number),
			authorization_number=VALUES(authorization_number),
			authorization_date=VALUES(authorization_date), updated_at=VALUES(updated_at)`,
		string(cfg.Title), cfg.Name, cfg.Address, cfg.AddressNumber, cfg.PostalCode, cfg.Locality,
		cfg.BCENumber, cfg.AuthorizationNumber, datePtrValue(cfg.AuthorizationDate), time.Now(),
	)
	return err
}
