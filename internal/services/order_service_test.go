package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/domain"
)

type orderStore struct {
	orders   map[uuid.UUID]domain.Order
	inserted []domain.Order
	saved    []domain.Order
	audits   []string
	seq      int64
}

func newOrderStore() *orderStore {
	return &orderStore{orders: map[uuid.UUID]domain.Order{}}
}

func (st *orderStore) service(now time.Time) OrderService {
	return OrderService{
		Now: func() time.Time { return now },
		Load: func(id uuid.UUID) (domain.Order, error) {
			o, ok := st.orders[id]
			if !ok {
				return domain.Order{}, sql.ErrNoRows
			}
			return o, nil
		},
		Insert: func(o domain.Order) error {
			st.inserted = append(st.inserted, o)
			st.orders[o.ID] = o
			return nil
		},
		Save: func(o domain.Order) error {
			if _, ok := st.orders[o.ID]; !ok {
				return sql.ErrNoRows
			}
			st.saved = append(st.saved, o)
			st.orders[o.ID] = o
			return nil
		},
		LoadOperator: func() (domain.OperatorConfig, error) {
			return domain.OperatorConfig{
				Title:               domain.TitleSociete,
				Name:                "Taxis Mosan SRL",
				PostalCode:          "5000",
				Locality:            "Namur",
				AuthorizationNumber: "W-2024-77",
			}, nil
		},
		NextSeq: func(year int) (int64, error) {
			st.seq++
			return st.seq, nil
		},
		Audit: func(id uuid.UUID, action string, userID int64, details map[string]any) error {
			st.audits = append(st.audits, action)
			return nil
		},
	}
}

func orderInput() domain.Order {
	return domain.Order{
		Client:      domain.ClientBlock{Name: "Dupont"},
		ServiceType: domain.ServiceOutbound,
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	st := newOrderStore()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := st.service(now)

	created, err := svc.Create(orderInput(), 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Reference != "TC-2024-000001" {
		t.Fatalf("reference = %q", created.Reference)
	}
	if created.Operator.Name != "Taxis Mosan SRL" {
		t.Fatalf("operator not defaulted from config: %+v", created.Operator)
	}
	if created.Client.Title != domain.TitleMonsieur {
		t.Fatalf("client title should default to Monsieur, got %q", created.Client.Title)
	}
	if created.Status != domain.StatusDraft {
		t.Fatalf("new order must be a draft")
	}
	if created.SignatureToken == uuid.Nil {
		t.Fatalf("a token must be minted at creation")
	}
	if created.SignatureTokenExpires != nil {
		t.Fatalf("the initial token must be unarmed")
	}
	if created.HasSignature() {
		t.Fatalf("new order cannot be signed")
	}
	if created.CreatedBy != 5 {
		t.Fatalf("creator not recorded")
	}
}

func TestCreateSequencePerCall(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a, _ := svc.Create(orderInput(), 1)
	b, _ := svc.Create(orderInput(), 1)
	if a.Reference == b.Reference {
		t.Fatalf("two orders got the same reference %q", a.Reference)
	}
	if b.Reference != "TC-2024-000002" {
		t.Fatalf("sequence not consumed in order: %q", b.Reference)
	}
}

func TestCreateKeepsProvidedOperator(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Now())

	in := orderInput()
	in.Operator = domain.OperatorBlock{Title: domain.TitleSociete, Name: "Autre Exploitant"}
	created, err := svc.Create(in, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Operator.Name != "Autre Exploitant" {
		t.Fatalf("provided operator overwritten")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Now())

	in := orderInput()
	in.Client.Name = ""
	if _, err := svc.Create(in, 1); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("invalid order must not be stored")
	}
}

func TestUpdateInvalidatesSignatureOnContentChange(t *testing.T) {
	st := newOrderStore()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := st.service(now)

	created, _ := svc.Create(orderInput(), 1)

	// Sign it out of band.
	signed := st.orders[created.ID]
	signed.ClientSignature = []byte("ciphertext")
	sigDate := now.Add(-time.Hour)
	signed.ClientSignatureDate = &sigDate
	signed.PassengersAdult = 1
	st.orders[created.ID] = signed

	in := signed
	in.PassengersAdult = 2

	updated, err := svc.Update(created.ID, in, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HasSignature() {
		t.Fatalf("signature must be cleared when signed content changes")
	}
	if updated.ClientSignatureDate != nil {
		t.Fatalf("signature date must be cleared too")
	}

	found := false
	for _, a := range st.audits {
		if a == "signature_invalidated" {
			found = true
		}
	}
	if !found {
		t.Fatalf("signature_invalidated audit entry missing, got %v", st.audits)
	}
}

func TestUpdateKeepsSignatureOnNeutralChange(t *testing.T) {
	st := newOrderStore()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := st.service(now)

	created, _ := svc.Create(orderInput(), 1)

	signed := st.orders[created.ID]
	signed.ClientSignature = []byte("ciphertext")
	st.orders[created.ID] = signed

	// Phone number is outside the signed content.
	in := signed
	in.Client.Phone = "081 00 00 00"

	updated, err := svc.Update(created.ID, in, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.HasSignature() {
		t.Fatalf("neutral edits must keep the signature")
	}
	for _, a := range st.audits {
		if a == "signature_invalidated" {
			t.Fatalf("no invalidation expected")
		}
	}
}

func TestUpdateUnknownOrder(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Now())
	if _, err := svc.Update(uuid.New(), orderInput(), 1); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Now())
	created, _ := svc.Create(orderInput(), 1)

	in := st.orders[created.ID]
	in.ServiceType = "teleportation"
	if _, err := svc.Update(created.ID, in, 1); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDuplicateDropsSignatureAndPDF(t *testing.T) {
	st := newOrderStore()
	svc := st.service(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	created, _ := svc.Create(orderInput(), 1)

	src := st.orders[created.ID]
	src.ClientSignature = []byte("ciphertext")
	gen := time.Now()
	src.PDFGeneratedAt = &gen
	st.orders[created.ID] = src

	dup, err := svc.Duplicate(created.ID, 1)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == created.ID || dup.Reference == created.Reference {
		t.Fatalf("duplicate must get its own identity")
	}
	if dup.HasSignature() || dup.PDFGeneratedAt != nil {
		t.Fatalf("duplicate must start unsigned and without a PDF")
	}
	if dup.Client.Name != src.Client.Name {
		t.Fatalf("client content must be copied")
	}
}
