package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/repositories"
	"annexe9-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type clientDirectoryPayload struct {
	Title         string `json:"title"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
	Locality      string `json:"locality"`
	Phone         string `json:"phone"`
	GSM           string `json:"gsm"`
}

func (p clientDirectoryPayload) toBlock() (domain.ClientBlock, error) {
	b := domain.ClientBlock{
		Title:         domain.Title(p.Title),
		Name:          utils.TrimOrEmpty(p.Name),
		Address:       utils.TrimOrEmpty(p.Address),
		AddressNumber: utils.TrimOrEmpty(p.AddressNumber),
		PostalCode:    utils.TrimOrEmpty(p.PostalCode),
		Locality:      utils.TrimOrEmpty(p.Locality),
		Phone:         utils.TrimOrEmpty(p.Phone),
		GSM:           utils.TrimOrEmpty(p.GSM),
	}
	if b.Name == "" {
		return b, domain.ValidationError{Field: "name", Msg: "requis"}
	}
	if b.Title == "" {
		b.Title = domain.TitleMonsieur
	}
	if !b.Title.Valid() {
		return b, domain.ValidationError{Field: "title", Msg: "valeur inconnue"}
	}
	return b, nil
}

// GET /api/clients
func ListClients(c *gin.Context) {
	repo := repositories.ClientRepository{}
	clients, err := repo.List(c.Query("search"))
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "total": len(clients)})
}

// GET /api/clients/:id
func GetClient(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	repo := repositories.ClientRepository{}
	client, err := repo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		RespondDomainError(c, domain.NotFoundError{Resource: "client", Err: err})
		return
	}
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, client)
}

// POST /api/clients
func CreateClient(c *gin.Context) {
	var payload clientDirectoryPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	block, err := payload.toBlock()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	now := time.Now().UTC()
	client := repositories.Client{
		ID:        uuid.New(),
		Block:     block,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo := repositories.ClientRepository{}
	if err := repo.Create(client); err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusCreated, client)
}

// PUT /api/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var payload clientDirectoryPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	block, err := payload.toBlock()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	client := repositories.Client{
		ID:        id,
		Block:     block,
		UpdatedAt: time.Now().UTC(),
	}
	repo := repositories.ClientRepository{}
	if err := repo.Update(client); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondDomainError(c, domain.NotFoundError{Resource: "client", Err: err})
			return
		}
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, client)
}

// DELETE /api/clients/:id
func DeleteClient(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	repo := repositories.ClientRepository{}
	if err := repo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondDomainError(c, domain.NotFoundError{Resource: "client", Err: err})
			return
		}
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client supprimé"})
}
