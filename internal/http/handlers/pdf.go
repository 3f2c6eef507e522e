package handlers

import (
	"fmt"
	"net/http"

	"annexe9-backend/internal/http/middleware"
	"annexe9-backend/internal/services"

	"github.com/gin-gonic/gin"
)

func docsService(c *gin.Context) services.DocsService {
	return services.DocsService{RequestID: middleware.GetRequestID(c)}
}

func servePDF(c *gin.Context, pdfBytes []byte, filename string, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/orders/:id/pdf/preview
// Renders the current order without persisting anything.
func PreviewOrderPDF(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := docsService(c).Render(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	servePDF(c, pdfBytes, filename, true)
}

// POST /api/orders/:id/pdf
// Renders, stores and returns the PDF; a draft moves to generated.
func GenerateOrderPDF(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := docsService(c).GenerateAndStore(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	servePDF(c, pdfBytes, filename, false)
}

// GET /api/orders/:id/pdf
// Returns the stored PDF, rendering one on the fly when none is stored.
func DownloadOrderPDF(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := docsService(c).Download(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	servePDF(c, pdfBytes, filename, false)
}
