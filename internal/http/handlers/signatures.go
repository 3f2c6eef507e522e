package handlers

import (
	"net/http"
	"time"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/http/middleware"
	"annexe9-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func signatureService(c *gin.Context) services.SignatureService {
	return services.SignatureService{
		RequestID:     middleware.GetRequestID(c),
		PublicBaseURL: publicBaseURL,
	}
}

var publicBaseURL string

// SetPublicBaseURL installs the base URL used to build signature links.
func SetPublicBaseURL(u string) { publicBaseURL = u }

type issueLinkRequest struct {
	TTLHours int `json:"ttlHours"`
}

// POST /api/orders/:id/signature-link
func IssueSignatureLink(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	var req issueLinkRequest
	if c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}

	link, err := signatureService(c).IssueLink(id, time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// GET /api/orders/:id/signature-status
func SignatureStatus(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	o, err := orderService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	now := time.Now().UTC()
	linkActive := !o.HasSignature() &&
		o.SignatureTokenExpires != nil && o.SignatureTokenExpires.After(now)

	resp := gin.H{
		"hasSignature": o.HasSignature(),
		"linkActive":   linkActive,
	}
	if o.ClientSignatureDate != nil {
		resp["signatureDate"] = o.ClientSignatureDate.Format(time.RFC3339)
	}
	if o.SignatureTokenExpires != nil {
		resp["tokenExpiresAt"] = o.SignatureTokenExpires.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func parseToken(c *gin.Context) (uuid.UUID, bool) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		respondPublicError(c, domain.TokenInvalidError{Err: err})
		return uuid.Nil, false
	}
	return token, true
}

// respondPublicError speaks to the signing client in plain French; no codes
// from the staff API leak through.
func respondPublicError(c *gin.Context, err error) {
	switch {
	case domain.IsTokenInvalid(err):
		respondError(c, http.StatusGone, "invalid_or_expired_token",
			"Lien invalide ou expiré. Veuillez demander un nouveau lien.", nil)
	case domain.IsAlreadySigned(err):
		respondError(c, http.StatusConflict, "already_signed",
			"Ce bon de commande est déjà signé.", nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error",
			"Signature illisible. Veuillez réessayer.", nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error",
			"Une erreur est survenue. Veuillez réessayer plus tard.", nil)
	}
}

// GET /public/signature/:token
func PublicSignatureView(c *gin.Context) {
	token, ok := parseToken(c)
	if !ok {
		return
	}
	view, err := signatureService(c).PublicView(token)
	if err != nil {
		respondPublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type submitSignatureRequest struct {
	Signature string `json:"signature"`
}

// POST /public/signature/:token
func PublicSignatureSubmit(c *gin.Context) {
	token, ok := parseToken(c)
	if !ok {
		return
	}
	var req submitSignatureRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := signatureService(c).Submit(token, req.Signature); err != nil {
		respondPublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signature enregistrée. Merci."})
}
