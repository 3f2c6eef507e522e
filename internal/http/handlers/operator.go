package handlers

import (
	"net/http"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/repositories"
	"annexe9-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type operatorConfigPayload struct {
	Title               string `json:"title"`
	Name                string `json:"name"`
	Address             string `json:"address"`
	AddressNumber       string `json:"addressNumber"`
	PostalCode          string `json:"postalCode"`
	Locality            string `json:"locality"`
	BCENumber           string `json:"bceNumber"`
	AuthorizationNumber string `json:"authorizationNumber"`
	AuthorizationDate   string `json:"authorizationDate"`
}

// GET /api/operator-config
func GetOperatorConfig(c *gin.Context) {
	repo := repositories.OperatorRepository{}
	cfg, err := repo.Get()
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":               string(cfg.Title),
		"name":                cfg.Name,
		"address":             cfg.Address,
		"addressNumber":       cfg.AddressNumber,
		"postalCode":          cfg.PostalCode,
		"locality":            cfg.Locality,
		"bceNumber":           cfg.BCENumber,
		"authorizationNumber": cfg.AuthorizationNumber,
		"authorizationDate":   utils.FormatISODate(cfg.AuthorizationDate),
	})
}

// PUT /api/operator-config
func UpdateOperatorConfig(c *gin.Context) {
	var payload operatorConfigPayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	cfg := domain.OperatorConfig{
		Title:               domain.Title(payload.Title),
		Name:                utils.TrimOrEmpty(payload.Name),
		Address:             utils.TrimOrEmpty(payload.Address),
		AddressNumber:       utils.TrimOrEmpty(payload.AddressNumber),
		PostalCode:          utils.TrimOrEmpty(payload.PostalCode),
		Locality:            utils.TrimOrEmpty(payload.Locality),
		BCENumber:           utils.TrimOrEmpty(payload.BCENumber),
		AuthorizationNumber: utils.TrimOrEmpty(payload.AuthorizationNumber),
	}
	if cfg.Name == "" {
		RespondDomainError(c, domain.ValidationError{Field: "name", Msg: "requis"})
		return
	}
	if cfg.Title == "" {
		cfg.Title = domain.TitleSociete
	}
	if !cfg.Title.Valid() {
		RespondDomainError(c, domain.ValidationError{Field: "title", Msg: "valeur inconnue"})
		return
	}
	date, err := parseDateField(payload.AuthorizationDate, "authorizationDate")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	cfg.AuthorizationDate = date

	repo := repositories.OperatorRepository{}
	if err := repo.Save(cfg); err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "configuration exploitant enregistrée"})
}
