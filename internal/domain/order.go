package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusSent      Status = "sent"
	StatusArchived  Status = "archived"
)

type ServiceType string

const (
	ServiceOutbound  ServiceType = "outbound"
	ServiceReturn    ServiceType = "return"
	ServiceRoundTrip ServiceType = "round_trip"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceOutbound, ServiceReturn, ServiceRoundTrip:
		return true
	}
	return false
}

// Title is the printed civility on the form. The three options are drawn on
// one line and the two non-selected ones are struck through.
type Title string

const (
	TitleMadame   Title = "Madame"
	TitleMonsieur Title = "Monsieur"
	TitleSociete  Title = "Société"
)

func (t Title) Valid() bool {
	switch t {
	case TitleMadame, TitleMonsieur, TitleSociete:
		return true
	}
	return false
}

var postalCodeRe = regexp.MustCompile(`^\d{4,5}$`)

// OperatorBlock is the exploitant identity printed on the form.
type OperatorBlock struct {
	Title               Title      `json:"title"`
	Name                string     `json:"name"`
	Address             string     `json:"address"`
	AddressNumber       string     `json:"addressNumber"`
	PostalCode          string     `json:"postalCode"`
	Locality            string     `json:"locality"`
	BCENumber           string     `json:"bceNumber"`
	AuthorizationNumber string     `json:"authorizationNumber"`
	AuthorizationDate   *time.Time `json:"authorizationDate,omitempty"`
}

// ClientBlock is the client identity printed on the form.
type ClientBlock struct {
	Title         Title  `json:"title"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
	Locality      string `json:"locality"`
	Phone         string `json:"phone"`
	GSM           string `json:"gsm"`
}

// TripLeg holds one column of the trip table. All fields are optional; the
// table always renders both columns regardless of service type.
type TripLeg struct {
	Date        *time.Time `json:"date,omitempty"`
	Time        *time.Time `json:"time,omitempty"`
	Departure   string     `json:"departure"`
	Destination string     `json:"destination"`
	Price       *float64   `json:"price,omitempty"`
}

// Order is the bon de commande record. It doubles as the immutable snapshot
// handed to the rendering pipeline.
type Order struct {
	ID              uuid.UUID `json:"id"`
	Reference       string    `json:"reference"`
	TemplateVersion string    `json:"templateVersion"`
	Status          Status    `json:"status"`
	Language        string    `json:"language"`

	ReservationDate   *time.Time `json:"reservationDate"`
	ReservationNumber string     `json:"reservationNumber"`

	Operator OperatorBlock `json:"operator"`
	Client   ClientBlock   `json:"client"`

	PassengersAdult int         `json:"passengersAdult"`
	PassengersChild int         `json:"passengersChild"`
	ServiceType     ServiceType `json:"serviceType"`

	Outbound TripLeg `json:"outbound"`
	Return   TripLeg `json:"return"`

	// Ciphertext only; raw signature bytes never leave the render path.
	ClientSignature     []byte     `json:"-"`
	ClientSignatureDate *time.Time `json:"clientSignatureDate,omitempty"`

	SignatureToken        uuid.UUID  `json:"-"`
	SignatureTokenExpires *time.Time `json:"-"`

	PDFGeneratedAt *time.Time `json:"pdfGeneratedAt,omitempty"`
	CreatedBy      int64      `json:"createdBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasSignature is the sole predicate for "the client has signed".
func (o Order) HasSignature() bool {
	return len(o.ClientSignature) > 0
}

// Validate checks structural invariants before any mutation or render.
func (o Order) Validate() error {
	if strings.TrimSpace(o.Operator.Name) == "" {
		return ValidationError{Field: "operator.name", Msg: "requis"}
	}
	if strings.TrimSpace(o.Client.Name) == "" {
		return ValidationError{Field: "client.name", Msg: "requis"}
	}
	if o.Operator.Title != "" && !o.Operator.Title.Valid() {
		return ValidationError{Field: "operator.title", Msg: "valeur inconnue"}
	}
	if o.Client.Title != "" && !o.Client.Title.Valid() {
		return ValidationError{Field: "client.title", Msg: "valeur inconnue"}
	}
	if !o.ServiceType.Valid() {
		return ValidationError{Field: "serviceType", Msg: "valeur inconnue"}
	}
	if o.Operator.PostalCode != "" && !postalCodeRe.MatchString(o.Operator.PostalCode) {
		return ValidationError{Field: "operator.postalCode", Msg: "code postal invalide"}
	}
	if o.Client.PostalCode != "" && !postalCodeRe.MatchString(o.Client.PostalCode) {
		return ValidationError{Field: "client.postalCode", Msg: "code postal invalide"}
	}
	if o.PassengersAdult < 0 {
		return ValidationError{Field: "passengersAdult", Msg: "doit être >= 0"}
	}
	if o.PassengersChild < 0 {
		return ValidationError{Field: "passengersChild", Msg: "doit être >= 0"}
	}
	if o.Outbound.Price != nil && *o.Outbound.Price < 0 {
		return ValidationError{Field: "outbound.price", Msg: "doit être >= 0"}
	}
	if o.Return.Price != nil && *o.Return.Price < 0 {
		return ValidationError{Field: "return.price", Msg: "doit être >= 0"}
	}
	return nil
}

// SameSignedContent reports whether the fields covered by a client signature
// are identical between two versions of an order. Editing any of them while
// signed must clear the signature: the visible content of a signed form never
// diverges from what was actually signed.
func SameSignedContent(a, b Order) bool {
	return a.ServiceType == b.ServiceType &&
		a.PassengersAdult == b.PassengersAdult &&
		a.PassengersChild == b.PassengersChild &&
		sameLeg(a.Outbound, b.Outbound) &&
		sameLeg(a.Return, b.Return)
}

func sameLeg(a, b TripLeg) bool {
	return sameTimePtr(a.Date, b.Date) &&
		sameTimePtr(a.Time, b.Time) &&
		a.Departure == b.Departure &&
		a.Destination == b.Destination &&
		sameFloatPtr(a.Price, b.Price)
}

func sameTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// PublicOrderView is the limited read-only field set exposed on the public
// signature page. No internal ids beyond the order's own, no signature bytes.
type PublicOrderView struct {
	ID              uuid.UUID     `json:"id"`
	Reference       string        `json:"reference"`
	Operator        OperatorBlock `json:"operator"`
	Client          ClientBlock   `json:"client"`
	ServiceType     ServiceType   `json:"serviceType"`
	PassengersAdult int           `json:"passengersAdult"`
	PassengersChild int           `json:"passengersChild"`
	Outbound        TripLeg       `json:"outbound"`
	Return          TripLeg       `json:"return"`
	HasSignature    bool          `json:"hasSignature"`
}

func ToPublicView(o Order) PublicOrderView {
	return PublicOrderView{
		ID:              o.ID,
		Reference:       o.Reference,
		Operator:        o.Operator,
		Client:          o.Client,
		ServiceType:     o.ServiceType,
		PassengersAdult: o.PassengersAdult,
		PassengersChild: o.PassengersChild,
		Outbound:        o.Outbound,
		Return:          o.Return,
		HasSignature:    o.HasSignature(),
	}
}
