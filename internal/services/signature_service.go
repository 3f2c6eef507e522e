package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/repositories"
	"annexe9-backend/internal/sec"
	"annexe9-backend/internal/utils"
)

// DefaultTokenTTL is the validity window of a freshly issued signature link.
const DefaultTokenTTL = 24 * time.Hour

// SignatureService drives the signature token lifecycle: issue a link, let
// the client view the order through it, accept exactly one signature.
type SignatureService struct {
	OrderRepo repositories.OrderRepository
	AuditRepo repositories.AuditRepository
	Cipher    *sec.SignatureCipher
	RequestID string

	PublicBaseURL string

	// Test hooks; nil means the real repo/clock.
	Now         func() time.Time
	LoadByID    func(uuid.UUID) (domain.Order, error)
	LoadByToken func(uuid.UUID) (domain.Order, error)
	SetToken    func(orderID, token uuid.UUID, expires time.Time) error
	Consume     func(token uuid.UUID, ciphertext []byte, now time.Time) (bool, error)
	Audit       func(orderID uuid.UUID, action string, details map[string]any) error
}

func (s SignatureService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s SignatureService) cipher() (*sec.SignatureCipher, error) {
	if s.Cipher != nil {
		return s.Cipher, nil
	}
	if def := sec.Default(); def != nil {
		return def, nil
	}
	return nil, fmt.Errorf("chiffrement des signatures non initialisé")
}

func (s SignatureService) loadByID(id uuid.UUID) (domain.Order, error) {
	if s.LoadByID != nil {
		return s.LoadByID(id)
	}
	return s.OrderRepo.GetByID(id)
}

func (s SignatureService) loadByToken(token uuid.UUID) (domain.Order, error) {
	if s.LoadByToken != nil {
		return s.LoadByToken(token)
	}
	return s.OrderRepo.GetByToken(token)
}

func (s SignatureService) setToken(orderID, token uuid.UUID, expires time.Time) error {
	if s.SetToken != nil {
		return s.SetToken(orderID, token, expires)
	}
	return s.OrderRepo.SetSignatureToken(orderID, token, expires)
}

func (s SignatureService) consume(token uuid.UUID, ciphertext []byte, now time.Time) (bool, error) {
	if s.Consume != nil {
		return s.Consume(token, ciphertext, now)
	}
	return s.OrderRepo.ConsumeTokenWithSignature(token, ciphertext, now)
}

// IssuedLink is the staff-facing result of issuing a signature link.
type IssuedLink struct {
	Token     uuid.UUID `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
}

// IssueLink mints a fresh token for the order and returns the public URL.
// Reissuing replaces the previous token; an already signed order refuses.
func (s SignatureService) IssueLink(orderID uuid.UUID, ttl time.Duration) (IssuedLink, error) {
	o, err := s.loadByID(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return IssuedLink{}, domain.NotFoundError{Resource: "commande", Err: err}
	}
	if err != nil {
		return IssuedLink{}, domain.InternalError{Err: err}
	}
	if o.HasSignature() {
		return IssuedLink{}, domain.AlreadySignedError{}
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	token := uuid.New()
	expires := s.now().Add(ttl)
	if err := s.setToken(orderID, token, expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssuedLink{}, domain.NotFoundError{Resource: "commande", Err: err}
		}
		return IssuedLink{}, domain.InternalError{Err: err}
	}

	s.audit(orderID, "signature_link_issued", map[string]any{"expires_at": expires.Format(time.RFC3339)})
	utils.LogEvent(s.RequestID, "signatures", "issue_link", fmt.Sprintf("order_id=%s expires=%s", orderID, expires.Format(time.RFC3339)))

	return IssuedLink{Token: token, ExpiresAt: expires, URL: s.publicURL(token)}, nil
}

func (s SignatureService) publicURL(token uuid.UUID) string {
	base := strings.TrimRight(s.PublicBaseURL, "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/sign/%s", base, token)
}

// Resolve validates a token and returns the matching order. Unknown, expired
// and consumed tokens all come back as TokenInvalidError; a signed order
// whose token is somehow still live comes back as AlreadySignedError.
func (s SignatureService) Resolve(token uuid.UUID) (domain.Order, error) {
	o, err := s.loadByToken(token)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.TokenInvalidError{Err: err}
	}
	if err != nil {
		return domain.Order{}, domain.InternalError{Err: err}
	}
	if o.SignatureTokenExpires == nil || !o.SignatureTokenExpires.After(s.now()) {
		return domain.Order{}, domain.TokenInvalidError{}
	}
	if o.HasSignature() {
		return domain.Order{}, domain.AlreadySignedError{}
	}
	return o, nil
}

// PublicView is what the signature page renders: the order content, nothing
// internal.
func (s SignatureService) PublicView(token uuid.UUID) (domain.PublicOrderView, error) {
	o, err := s.Resolve(token)
	if err != nil {
		return domain.PublicOrderView{}, err
	}
	return domain.ToPublicView(o), nil
}

// Submit accepts the drawn signature as a data URL, encrypts it and consumes
// the token in one compare-and-set write. The first submission wins; every
// later one fails.
func (s SignatureService) Submit(token uuid.UUID, signatureDataURL string) error {
	raw, err := sec.DecodeDataURL(signatureDataURL)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return domain.ValidationError{Field: "signature", Msg: "signature vide"}
	}

	// Reject dead tokens before touching the cipher.
	if _, err := s.Resolve(token); err != nil {
		return err
	}

	cipher, err := s.cipher()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	ciphertext, err := cipher.Encrypt(raw)
	if err != nil {
		return domain.InternalError{Err: err}
	}

	now := s.now()
	ok, err := s.consume(token, ciphertext, now)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if !ok {
		// Lost the race since Resolve. Re-read once to tell "someone signed
		// first" apart from "token died".
		if o, err := s.loadByToken(token); err == nil && o.HasSignature() {
			return domain.AlreadySignedError{}
		}
		return domain.TokenInvalidError{}
	}

	if o, err := s.loadByToken(token); err == nil {
		s.audit(o.ID, "order_signed", map[string]any{"signed_at": now.Format(time.RFC3339)})
		utils.LogEvent(s.RequestID, "signatures", "submit", fmt.Sprintf("order_id=%s", o.ID))
	}
	return nil
}

func (s SignatureService) audit(orderID uuid.UUID, action string, details map[string]any) {
	record := s.Audit
	if record == nil {
		record = func(id uuid.UUID, a string, d map[string]any) error {
			return s.AuditRepo.Append(id, a, 0, d)
		}
	}
	if err := record(orderID, action, details); err != nil {
		utils.LogEvent(s.RequestID, "signatures", "audit_error", err.Error())
	}
}
