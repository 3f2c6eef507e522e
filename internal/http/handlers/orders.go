package handlers

import (
	"net/http"
	"strconv"
	"time"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/http/middleware"
	"annexe9-backend/internal/services"
	"annexe9-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// operatorPayload and friends carry dates and times as strings on the wire
// (YYYY-MM-DD and HH:MM), converted once at the boundary.
type operatorPayload struct {
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

type clientPayload struct {
	Title         string `json:"title"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
	Locality      string `json:"locality"`
	Phone         string `json:"phone"`
	GSM           string `json:"gsm"`
}

type tripLegPayload struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Departure   string   `json:"departure"`
	Destination string   `json:"destination"`
	Price       *float64 `json:"price"`
}

type orderPayload struct {
	Status            string          `json:"status"`
	Language          string          `json:"language"`
	ReservationDate   string          `json:"reservationDate"`
	ReservationNumber string          `json:"reservationNumber"`
	Operator          operatorPayload `json:"operator"`
	Client            clientPayload   `json:"client"`
	PassengersAdult   int             `json:"passengersAdult"`
	PassengersChild   int             `json:"passengersChild"`
	ServiceType       string          `json:"serviceType"`
	Outbound          tripLegPayload  `json:"outbound"`
	Return            tripLegPayload  `json:"return"`
}

func parseDateField(s, field string) (*time.Time, error) {
	if utils.TrimOrEmpty(s) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Msg: "date invalide, format attendu AAAA-MM-JJ", Err: err}
	}
	return &t, nil
}

func parseClockField(s, field string) (*time.Time, error) {
	if utils.TrimOrEmpty(s) == "" {
		return nil, nil
	}
	t, err := utils.ParseClock(s)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Msg: "heure invalide, format attendu HH:MM", Err: err}
	}
	return &t, nil
}

func (p orderPayload) toDomain() (domain.Order, error) {
	var o domain.Order
	var err error

	o.Status = domain.Status(p.Status)
	o.Language = utils.TrimOrEmpty(p.Language)
	o.ReservationNumber = utils.TrimOrEmpty(p.ReservationNumber)
	if o.ReservationDate, err = parseDateField(p.ReservationDate, "reservationDate"); err != nil {
		return o, err
	}

	o.Operator = domain.OperatorBlock{
		Title:               domain.Title(p.Operator.Title),
		Name:                utils.TrimOrEmpty(p.Operator.Name),
		Address:             utils.TrimOrEmpty(p.Operator.Address),
		AddressNumber:       utils.TrimOrEmpty(p.Operator.AddressNumber),
		PostalCode:          utils.TrimOrEmpty(p.Operator.PostalCode),
		Locality:            utils.TrimOrEmpty(p.Operator.Locality),
		BCENumber:           utils.TrimOrEmpty(p.Operator.BCENumber),
		AuthorizationNumber: utils.TrimOrEmpty(p.Operator.AuthorizationNumber),
	}
	if o.Operator.AuthorizationDate, err = parseDateField(p.Operator.AuthorizationDate, "operator.authorizationDate"); err != nil {
		return o, err
	}

	o.Client = domain.ClientBlock{
		Title:         domain.Title(p.Client.Title),
		Name:          utils.TrimOrEmpty(p.Client.Name),
		Address:       utils.TrimOrEmpty(p.Client.Address),
		AddressNumber: utils.TrimOrEmpty(p.Client.AddressNumber),
		PostalCode:    utils.TrimOrEmpty(p.Client.PostalCode),
		Locality:      utils.TrimOrEmpty(p.Client.Locality),
		Phone:         utils.TrimOrEmpty(p.Client.Phone),
		GSM:           utils.TrimOrEmpty(p.Client.GSM),
	}

	o.PassengersAdult = p.PassengersAdult
	o.PassengersChild = p.PassengersChild
	o.ServiceType = domain.ServiceType(p.ServiceType)

	if o.Outbound, err = p.Outbound.toLeg("outbound"); err != nil {
		return o, err
	}
	if o.Return, err = p.Return.toLeg("return"); err != nil {
		return o, err
	}
	return o, nil
}

func (p tripLegPayload) toLeg(field string) (domain.TripLeg, error) {
	var leg domain.TripLeg
	var err error
	if leg.Date, err = parseDateField(p.Date, field+".date"); err != nil {
		return leg, err
	}
	if leg.Time, err = parseClockField(p.Time, field+".time"); err != nil {
		return leg, err
	}
	leg.Departure = utils.TrimOrEmpty(p.Departure)
	leg.Destination = utils.TrimOrEmpty(p.Destination)
	leg.Price = p.Price
	return leg, nil
}

type orderResponse struct {
	ID                  string          `json:"id"`
	Reference           string          `json:"reference"`
	TemplateVersion     string          `json:"templateVersion"`
	Status              string          `json:"status"`
	Language            string          `json:"language"`
	ReservationDate     string          `json:"reservationDate"`
	ReservationNumber   string          `json:"reservationNumber"`
	Operator            operatorPayload `json:"operator"`
	Client              clientPayload   `json:"client"`
	PassengersAdult     int             `json:"passengersAdult"`
	PassengersChild     int             `json:"passengersChild"`
	ServiceType         string          `json:"serviceType"`
	Outbound            tripLegPayload  `json:"outbound"`
	Return              tripLegPayload  `json:"return"`
	HasSignature        bool            `json:"hasSignature"`
	ClientSignatureDate string          `json:"clientSignatureDate,omitempty"`
	PDFGeneratedAt      string          `json:"pdfGeneratedAt,omitempty"`
	CreatedAt           string          `json:"createdAt"`
	UpdatedAt           string          `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:                o.ID.String(),
		Reference:         o.Reference,
		TemplateVersion:   o.TemplateVersion,
		Status:            string(o.Status),
		Language:          o.Language,
		ReservationDate:   utils.FormatISODate(o.ReservationDate),
		ReservationNumber: o.ReservationNumber,
		Operator: operatorPayload{
			Title:               string(o.Operator.Title),
			Name:                o.Operator.Name,
			Address:             o.Operator.Address,
			AddressNumber:       o.Operator.AddressNumber,
			PostalCode:          o.Operator.PostalCode,
			Locality:            o.Operator.Locality,
			BCENumber:           o.Operator.BCENumber,
			AuthorizationNumber: o.Operator.AuthorizationNumber,
			AuthorizationDate:   utils.FormatISODate(o.Operator.AuthorizationDate),
		},
		Client: clientPayload{
			Title:         string(o.Client.Title),
			Name:          o.Client.Name,
			Address:       o.Client.Address,
			AddressNumber: o.Client.AddressNumber,
			PostalCode:    o.Client.PostalCode,
			Locality:      o.Client.Locality,
			Phone:         o.Client.Phone,
			GSM:           o.Client.GSM,
		},
		PassengersAdult:     o.PassengersAdult,
		PassengersChild:     o.PassengersChild,
		ServiceType:         string(o.ServiceType),
		Outbound:            toLegPayload(o.Outbound),
		Return:              toLegPayload(o.Return),
		HasSignature:        o.HasSignature(),
		ClientSignatureDate: formatRFC3339(o.ClientSignatureDate),
		PDFGeneratedAt:      formatRFC3339(o.PDFGeneratedAt),
		CreatedAt:           o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           o.UpdatedAt.Format(time.RFC3339),
	}
}

func toLegPayload(leg domain.TripLeg) tripLegPayload {
	return tripLegPayload{
		Date:        utils.FormatISODate(leg.Date),
		Time:        utils.FormatTime(leg.Time),
		Departure:   leg.Departure,
		Destination: leg.Destination,
		Price:       leg.Price,
	}
}

func formatRFC3339(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func orderService(c *gin.Context) services.OrderService {
	return services.OrderService{RequestID: middleware.GetRequestID(c)}
}

// POST /api/orders
func CreateOrder(c *gin.Context) {
	var payload orderPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	o, err := payload.toDomain()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	created, err := orderService(c).Create(o, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(created))
}

// GET /api/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	o, err := orderService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// GET /api/orders
func ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	search := c.Query("search")
	status := c.Query("status")

	orders, total, err := orderService(c).List(page, pageSize, search, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     out,
		"pagination": domain.Pagination{Page: page, PageSize: pageSize, Total: total},
	})
}

// PUT /api/orders/:id
func UpdateOrder(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var payload orderPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	in, err := payload.toDomain()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := orderService(c).Update(id, in, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

// DELETE /api/orders/:id
func DeleteOrder(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := orderService(c).Delete(id, middleware.GetUserID(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "commande supprimée"})
}

// POST /api/orders/:id/duplicate
func DuplicateOrder(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	copied, err := orderService(c).Duplicate(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(copied))
}
