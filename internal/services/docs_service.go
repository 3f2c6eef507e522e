package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/pdf"
	"annexe9-backend/internal/repositories"
	"annexe9-backend/internal/sec"
	"annexe9-backend/internal/utils"
)

// DocsService renders the bon de commande PDF. Rendering is deterministic:
// the same order snapshot always yields the same layout.
type DocsService struct {
	OrderRepo repositories.OrderRepository
	AuditRepo repositories.AuditRepository
	Cipher    *sec.SignatureCipher
	RequestID string

	// Test hooks; nil means the real repo/clock.
	Now      func() time.Time
	Loader   func(uuid.UUID) (domain.Order, error)
	StorePDF func(id uuid.UUID, pdfBytes []byte, now time.Time) error
	Audit    func(orderID uuid.UUID, action string, userID int64, details map[string]any) error
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s DocsService) load(id uuid.UUID) (domain.Order, error) {
	if s.Loader != nil {
		return s.Loader(id)
	}
	return s.OrderRepo.GetByID(id)
}

func (s DocsService) store(id uuid.UUID, pdfBytes []byte, now time.Time) error {
	if s.StorePDF != nil {
		return s.StorePDF(id, pdfBytes, now)
	}
	return s.OrderRepo.SavePDF(id, pdfBytes, now)
}

func (s DocsService) audit(orderID uuid.UUID, action string, userID int64, details map[string]any) {
	record := s.Audit
	if record == nil {
		record = s.AuditRepo.Append
	}
	if err := record(orderID, action, userID, details); err != nil {
		utils.LogEvent(s.RequestID, "docs", "audit_error", err.Error())
	}
}

// Render builds the PDF for an order without persisting anything. A stored
// signature that fails to decrypt is skipped with a log line; the rest of
// the form still renders.
func (s DocsService) Render(orderID uuid.UUID) ([]byte, string, error) {
	o, err := s.load(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.NotFoundError{Resource: "commande", Err: err}
	}
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	signature := s.decryptSignature(o)
	pdfBytes, err := pdf.BuildOrderForm(o, signature)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, "", err
		}
		return nil, "", domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "docs", "render", fmt.Sprintf("order_id=%s signed=%t", o.ID, len(signature) > 0))
	return pdfBytes, s.filename(o), nil
}

// GenerateAndStore renders and persists the PDF, moving a draft to the
// generated status.
func (s DocsService) GenerateAndStore(orderID uuid.UUID, userID int64) ([]byte, string, error) {
	pdfBytes, name, err := s.Render(orderID)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	if err := s.store(orderID, pdfBytes, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.NotFoundError{Resource: "commande", Err: err}
		}
		return nil, "", domain.InternalError{Err: err}
	}
	s.audit(orderID, "pdf_generated", userID, map[string]any{"size": len(pdfBytes)})
	utils.LogEvent(s.RequestID, "docs", "generate", fmt.Sprintf("order_id=%s bytes=%d", orderID, len(pdfBytes)))
	return pdfBytes, name, nil
}

// Download returns the stored PDF, rendering a fresh one when nothing has
// been stored yet.
func (s DocsService) Download(orderID uuid.UUID) ([]byte, string, error) {
	o, err := s.load(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.NotFoundError{Resource: "commande", Err: err}
	}
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	if s.Loader == nil {
		stored, _, err := s.OrderRepo.LoadPDF(orderID)
		if err == nil && len(stored) > 0 {
			return stored, s.filename(o), nil
		}
	}
	return s.Render(orderID)
}

func (s DocsService) filename(o domain.Order) string {
	return fmt.Sprintf("annexe9_%s_%s.pdf",
		utils.SafeFilenamePart(o.Reference),
		s.now().Format("2006-01-02"))
}

// decryptSignature returns the plaintext signature image, or nil when the
// order is unsigned or the ciphertext fails authentication.
func (s DocsService) decryptSignature(o domain.Order) []byte {
	if !o.HasSignature() {
		return nil
	}
	cipher := s.Cipher
	if cipher == nil {
		cipher = sec.Default()
	}
	if cipher == nil {
		utils.LogEvent(s.RequestID, "docs", "signature_skip", fmt.Sprintf("order_id=%s cipher indisponible", o.ID))
		return nil
	}
	raw, err := cipher.Decrypt(o.ClientSignature)
	if err != nil {
		utils.LogEvent(s.RequestID, "docs", "signature_skip", fmt.Sprintf("order_id=%s déchiffrement refusé", o.ID))
		return nil
	}
	return raw
}
