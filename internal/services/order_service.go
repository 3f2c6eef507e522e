package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/repositories"
	"annexe9-backend/internal/utils"
)

// TemplateVersion identifies the fixed form layout a stored order was
// created against (the 2013 Walloon Government model).
const TemplateVersion = "Annex9_v2013"

// OrderService owns the bon de commande lifecycle. Editing a signed order's
// visible content invalidates the stored signature.
type OrderService struct {
	OrderRepo    repositories.OrderRepository
	OperatorRepo repositories.OperatorRepository
	AuditRepo    repositories.AuditRepository
	RequestID    string

	// Test hooks; nil means the real repo/clock.
	Now          func() time.Time
	Load         func(uuid.UUID) (domain.Order, error)
	Insert       func(domain.Order) error
	Save         func(domain.Order) error
	LoadOperator func() (domain.OperatorConfig, error)
	NextSeq      func(year int) (int64, error)
	Audit        func(orderID uuid.UUID, action string, userID int64, details map[string]any) error
}

func (s OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s OrderService) load(id uuid.UUID) (domain.Order, error) {
	if s.Load != nil {
		return s.Load(id)
	}
	return s.OrderRepo.GetByID(id)
}

func (s OrderService) insert(o domain.Order) error {
	if s.Insert != nil {
		return s.Insert(o)
	}
	return s.OrderRepo.Create(o)
}

func (s OrderService) save(o domain.Order) error {
	if s.Save != nil {
		return s.Save(o)
	}
	return s.OrderRepo.Update(o)
}

func (s OrderService) operator() (domain.OperatorConfig, error) {
	if s.LoadOperator != nil {
		return s.LoadOperator()
	}
	return s.OperatorRepo.Get()
}

func (s OrderService) nextSeq(year int) (int64, error) {
	if s.NextSeq != nil {
		return s.NextSeq(year)
	}
	return s.OrderRepo.NextReference(year)
}

func (s OrderService) audit(orderID uuid.UUID, action string, userID int64, details map[string]any) {
	record := s.Audit
	if record == nil {
		record = s.AuditRepo.Append
	}
	if err := record(orderID, action, userID, details); err != nil {
		utils.LogEvent(s.RequestID, "orders", "audit_error", err.Error())
	}
}

// Create registers a new order. Empty operator fields are filled from the
// operator config, the reference is drawn from the per-year sequence and a
// first signature token is minted unarmed (no expiry, so not yet usable).
func (s OrderService) Create(o domain.Order, userID int64) (domain.Order, error) {
	now := s.now()

	if o.Operator.Name == "" {
		cfg, err := s.operator()
		if err != nil {
			return domain.Order{}, domain.InternalError{Err: err}
		}
		o.Operator = cfg.Block()
	}
	if o.Operator.Title == "" {
		o.Operator.Title = domain.TitleSociete
	}
	if o.Client.Title == "" {
		o.Client.Title = domain.TitleMonsieur
	}
	if o.ServiceType == "" {
		o.ServiceType = domain.ServiceOutbound
	}
	if o.Language == "" {
		o.Language = "fr"
	}

	if err := o.Validate(); err != nil {
		return domain.Order{}, err
	}

	seq, err := s.nextSeq(now.Year())
	if err != nil {
		return domain.Order{}, domain.InternalError{Err: err}
	}

	o.ID = uuid.New()
	o.Reference = fmt.Sprintf("TC-%d-%06d", now.Year(), seq)
	o.TemplateVersion = TemplateVersion
	o.Status = domain.StatusDraft
	o.ClientSignature = nil
	o.ClientSignatureDate = nil
	o.SignatureToken = uuid.New()
	o.SignatureTokenExpires = nil
	o.PDFGeneratedAt = nil
	o.CreatedBy = userID
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.insert(o); err != nil {
		return domain.Order{}, domain.InternalError{Err: err}
	}

	s.audit(o.ID, "order_created", userID, map[string]any{"reference": o.Reference})
	utils.LogEvent(s.RequestID, "orders", "create", fmt.Sprintf("order_id=%s reference=%s", o.ID, o.Reference))
	return o, nil
}

func (s OrderService) Get(id uuid.UUID) (domain.Order, error) {
	o, err := s.load(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFoundError{Resource: "commande", Err: err}
	}
	if err != nil {
		return domain.Order{}, domain.InternalError{Err: err}
	}
	return o, nil
}

func (s OrderService) List(page, pageSize int, search, status string) ([]domain.Order, int, error) {
	orders, total, err := s.OrderRepo.List(page, pageSize, search, status)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return orders, total, nil
}

// Update overlays the editable fields onto the stored order. When the order
// already carries a signature and the edit touches the signed content, the
// signature and its date are cleared in the same write.
func (s OrderService) Update(id uuid.UUID, in domain.Order, userID int64) (domain.Order, error) {
	before, err := s.Get(id)
	if err != nil {
		return domain.Order{}, err
	}

	next := before
	next.Status = pickStatus(before.Status, in.Status)
	if in.Language != "" {
		next.Language = in.Language
	}
	next.ReservationDate = in.ReservationDate
	next.ReservationNumber = in.ReservationNumber
	next.Operator = in.Operator
	next.Client = in.Client
	next.PassengersAdult = in.PassengersAdult
	next.PassengersChild = in.PassengersChild
	next.ServiceType = in.ServiceType
	next.Outbound = in.Outbound
	next.Return = in.Return
	next.UpdatedAt = s.now()

	if err := next.Validate(); err != nil {
		return domain.Order{}, err
	}

	invalidated := before.HasSignature() && !domain.SameSignedContent(before, next)
	if invalidated {
		next.ClientSignature = nil
		next.ClientSignatureDate = nil
	}

	if err := s.save(next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.NotFoundError{Resource: "commande", Err: err}
		}
		return domain.Order{}, domain.InternalError{Err: err}
	}

	s.audit(id, "order_updated", userID, nil)
	if invalidated {
		s.audit(id, "signature_invalidated", userID, map[string]any{"reason": "contenu signé modifié"})
		utils.LogEvent(s.RequestID, "orders", "signature_invalidated", fmt.Sprintf("order_id=%s", id))
	}
	return next, nil
}

func pickStatus(current, requested domain.Status) domain.Status {
	switch requested {
	case domain.StatusDraft, domain.StatusGenerated, domain.StatusSent, domain.StatusArchived:
		return requested
	}
	return current
}

func (s OrderService) Delete(id uuid.UUID, userID int64) error {
	err := s.OrderRepo.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "commande", Err: err}
	}
	if err != nil {
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "orders", "delete", fmt.Sprintf("order_id=%s", id))
	return nil
}

// Duplicate copies an order into a fresh draft: new id, new reference, no
// signature, no PDF.
func (s OrderService) Duplicate(id uuid.UUID, userID int64) (domain.Order, error) {
	src, err := s.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	copyOrder := src
	copyOrder.ClientSignature = nil
	copyOrder.ClientSignatureDate = nil
	copyOrder.PDFGeneratedAt = nil
	created, err := s.Create(copyOrder, userID)
	if err != nil {
		return domain.Order{}, err
	}
	s.audit(created.ID, "order_duplicated", userID, map[string]any{"source": src.ID.String()})
	return created, nil
}
