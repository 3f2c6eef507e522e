package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/config"
	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/utils"
)

// OrderRepository wraps DB access for orders. Token consumption is a single
// guarded UPDATE so two concurrent submissions can never both win.
type OrderRepository struct {
	DB *sql.DB
}

func (r OrderRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const orderColumns = `
	id, reference, template_version, status, language,
	reservation_date, reservation_number,
	operator_title, operator_name, operator_address, operator_address_number,
	operator_postal_code, operator_locality, operator_bce_number,
	operator_authorization_number, operator_authorization_date,
	client_title, client_name, client_address, client_address_number,
	client_postal_code, client_locality, client_phone, client_gsm,
	passengers_adult, passengers_child, service_type,
	outbound_date, outbound_time, outbound_departure, outbound_destination, outbound_price,
	return_date, return_time, return_departure, return_destination, return_price,
	client_signature, client_signature_date,
	signature_token, signature_token_expires,
	pdf_generated_at, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                          domain.Order
		idStr, tokenStr            string
		reservationDate            sql.NullTime
		operatorAuthDate           sql.NullTime
		outDate, retDate           sql.NullTime
		outTime, retTime           sql.NullString
		outPrice, retPrice         sql.NullFloat64
		signature                  []byte
		signatureDate              sql.NullTime
		tokenExpires               sql.NullTime
		pdfGeneratedAt             sql.NullTime
		createdBy                  sql.NullInt64
		operatorTitle, clientTitle string
	)

	err := row.Scan(
		&idStr, &o.Reference, &o.TemplateVersion, &o.Status, &o.Language,
		&reservationDate, &o.ReservationNumber,
		&operatorTitle, &o.Operator.Name, &o.Operator.Address, &o.Operator.AddressNumber,
		&o.Operator.PostalCode, &o.Operator.Locality, &o.Operator.BCENumber,
		&o.Operator.AuthorizationNumber, &operatorAuthDate,
		&clientTitle, &o.Client.Name, &o.Client.Address, &o.Client.AddressNumber,
		&o.Client.PostalCode, &o.Client.Locality, &o.Client.Phone, &o.Client.GSM,
		&o.PassengersAdult, &o.PassengersChild, &o.ServiceType,
		&outDate, &outTime, &o.Outbound.Departure, &o.Outbound.Destination, &outPrice,
		&retDate, &retTime, &o.Return.Departure, &o.Return.Destination, &retPrice,
		&signature, &signatureDate,
		&tokenStr, &tokenExpires,
		&pdfGeneratedAt, &createdBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}

	if o.ID, err = uuid.Parse(idStr); err != nil {
		return domain.Order{}, fmt.Errorf("orders.id invalide: %w", err)
	}
	if o.SignatureToken, err = uuid.Parse(tokenStr); err != nil {
		return domain.Order{}, fmt.Errorf("orders.signature_token invalide: %w", err)
	}

	o.Operator.Title = domain.Title(operatorTitle)
	o.Client.Title = domain.Title(clientTitle)
	o.ReservationDate = nullTimePtr(reservationDate)
	o.Operator.AuthorizationDate = nullTimePtr(operatorAuthDate)
	o.Outbound.Date = nullTimePtr(outDate)
	o.Return.Date = nullTimePtr(retDate)
	o.Outbound.Time = clockPtr(outTime)
	o.Return.Time = clockPtr(retTime)
	o.Outbound.Price = nullFloatPtr(outPrice)
	o.Return.Price = nullFloatPtr(retPrice)
	o.ClientSignature = signature
	o.ClientSignatureDate = nullTimePtr(signatureDate)
	o.SignatureTokenExpires = nullTimePtr(tokenExpires)
	o.PDFGeneratedAt = nullTimePtr(pdfGeneratedAt)
	if createdBy.Valid {
		o.CreatedBy = createdBy.Int64
	}
	return o, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// clockPtr parses MySQL TIME values ("08:30:00") into a time-of-day.
func clockPtr(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	t, err := utils.ParseClock(v.String)
	if err != nil {
		return nil
	}
	return &t
}

func clockValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("15:04:05")
}

func datePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (r OrderRepository) Create(o domain.Order) error {
	_, err := r.db().Exec(`
		INSERT INTO orders (`+strings.TrimSpace(orderColumns)+`)
		VALUES (?,?,?,?,?, ?,?, ?,?,?,?,?,?,?,?,?, ?,?,?,?,?,?,?,?, ?,?,?, ?,?,?,?,?, ?,?,?,?,?, ?,?, ?,?, ?,?,?,?)`,
		o.ID.String(), o.Reference, o.TemplateVersion, string(o.Status), o.Language,
		datePtrValue(o.ReservationDate), o.ReservationNumber,
		string(o.Operator.Title), o.Operator.Name, o.Operator.Address, o.Operator.AddressNumber,
		o.Operator.PostalCode, o.Operator.Locality, o.Operator.BCENumber,
		o.Operator.AuthorizationNumber, datePtrValue(o.Operator.AuthorizationDate),
		string(o.Client.Title), o.Client.Name, o.Client.Address, o.Client.AddressNumber,
		o.Client.PostalCode, o.Client.Locality, o.Client.Phone, o.Client.GSM,
		o.PassengersAdult, o.PassengersChild, string(o.ServiceType),
		datePtrValue(o.Outbound.Date), clockValue(o.Outbound.Time), o.Outbound.Departure, o.Outbound.Destination, o.Outbound.Price,
		datePtrValue(o.Return.Date), clockValue(o.Return.Time), o.Return.Departure, o.Return.Destination, o.Return.Price,
		o.ClientSignature, datePtrValue(o.ClientSignatureDate),
		o.SignatureToken.String(), datePtrValue(o.SignatureTokenExpires),
		datePtrValue(o.PDFGeneratedAt), nullIfZeroInt(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func nullIfZeroInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func (r OrderRepository) GetByID(id uuid.UUID) (domain.Order, error) {
	row := r.db().QueryRow(`SELECT `+strings.TrimSpace(orderColumns)+` FROM orders WHERE id=? LIMIT 1`, id.String())
	return scanOrder(row)
}

func (r OrderRepository) GetByToken(token uuid.UUID) (domain.Order, error) {
	row := r.db().QueryRow(`SELECT `+strings.TrimSpace(orderColumns)+` FROM orders WHERE signature_token=? LIMIT 1`, token.String())
	return scanOrder(row)
}

// List returns a page of orders plus the total count. search matches the
// reference or the client name.
func (r OrderRepository) List(page, pageSize int, search, status string) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	where := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		where = append(where, "(reference LIKE ? OR client_name LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if status != "" {
		where = append(where, "status=?")
		args = append(args, status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.db().Query(`SELECT `+strings.TrimSpace(orderColumns)+` FROM orders WHERE `+cond+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// Update rewrites every mutable field, signature columns included: clearing
// an invalidated signature goes through here.
func (r OrderRepository) Update(o domain.Order) error {
	res, err := r.db().Exec(`
		UPDATE orders SET
			status=?, language=?,
			reservation_date=?, reservation_number=?,
			operator_title=?, operator_name=?, operator_address=?, operator_address_number=?,
			operator_postal_code=?, operator_locality=?, operator_bce_number=?,
			operator_authorization_number=?, operator_authorization_date=?,
			client_title=?, client_name=?, client_address=?, client_address_number=?,
			client_postal_code=?, client_locality=?, client_phone=?, client_gsm=?,
			passengers_adult=?, passengers_child=?, service_type=?,
			outbound_date=?, outbound_time=?, outbound_departure=?, outbound_destination=?, outbound_price=?,
			return_date=?, return_time=?, return_departure=?, return_destination=?, return_price=?,
			client_signature=?, client_signature_date=?,
			updated_at=?
		WHERE id=?`,
		string(o.Status), o.Language,
		datePtrValue(o.ReservationDate), o.ReservationNumber,
		string(o.Operator.Title), o.Operator.Name, o.Operator.Address, o.Operator.AddressNumber,
		o.Operator.PostalCode, o.Operator.Locality, o.Operator.BCENumber,
		o.Operator.AuthorizationNumber, datePtrValue(o.Operator.AuthorizationDate),
		string(o.Client.Title), o.Client.Name, o.Client.Address, o.Client.AddressNumber,
		o.Client.PostalCode, o.Client.Locality, o.Client.Phone, o.Client.GSM,
		o.PassengersAdult, o.PassengersChild, string(o.ServiceType),
		datePtrValue(o.Outbound.Date), clockValue(o.Outbound.Time), o.Outbound.Departure, o.Outbound.Destination, o.Outbound.Price,
		datePtrValue(o.Return.Date), clockValue(o.Return.Time), o.Return.Departure, o.Return.Destination, o.Return.Price,
		o.ClientSignature, datePtrValue(o.ClientSignatureDate),
		o.UpdatedAt,
		o.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r OrderRepository) Delete(id uuid.UUID) error {
	res, err := r.db().Exec(`DELETE FROM orders WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetSignatureToken overwrites the current token; the previous one dies by
// overwrite, there is no revocation list.
func (r OrderRepository) SetSignatureToken(id, token uuid.UUID, expires time.Time) error {
	res, err := r.db().Exec(`
		UPDATE orders SET signature_token=?, signature_token_expires=?, updated_at=?
		WHERE id=?`,
		token.String(), expires, time.Now(), id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ConsumeTokenWithSignature stores the ciphertext, stamps the capture time
// and forces the token expiry to now, in one compare-and-set UPDATE. Returns
// false when the token was already expired, consumed or the order signed.
func (r OrderRepository) ConsumeTokenWithSignature(token uuid.UUID, ciphertext []byte, now time.Time) (bool, error) {
	res, err := r.db().Exec(`
		UPDATE orders
		SET client_signature=?, client_signature_date=?, signature_token_expires=?, updated_at=?
		WHERE signature_token=?
		  AND client_signature IS NULL
		  AND signature_token_expires IS NOT NULL
		  AND signature_token_expires > ?`,
		ciphertext, now, now, now, token.String(), now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r OrderRepository) SavePDF(id uuid.UUID, pdfBytes []byte, now time.Time) error {
	res, err := r.db().Exec(`
		UPDATE orders
		SET pdf_file=?, pdf_generated_at=?, status=IF(status='draft','generated',status), updated_at=?
		WHERE id=?`,
		pdfBytes, now, now, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LoadPDF returns the stored PDF bytes and their generation time. Both are
// nil when no PDF has been generated yet.
func (r OrderRepository) LoadPDF(id uuid.UUID) ([]byte, *time.Time, error) {
	var (
		pdfBytes    []byte
		generatedAt sql.NullTime
	)
	err := r.db().QueryRow(`SELECT pdf_file, pdf_generated_at FROM orders WHERE id=? LIMIT 1`, id.String()).
		Scan(&pdfBytes, &generatedAt)
	if err != nil {
		return nil, nil, err
	}
	return pdfBytes, nullTimePtr(generatedAt), nil
}

// NextReference reserves the next number of the per-year sequence. The
// LAST_INSERT_ID trick keeps the increment atomic without explicit locking.
func (r OrderRepository) NextReference(year int) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO order_sequences (year, last_number) VALUES (?, LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE last_number=LAST_INSERT_ID(last_number+1)`, year)
	if err != nil {
		return 0, err
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("séquence de référence invalide pour %d", year)
	}
	return n, nil
}
