package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	"github.com/smallbiznis/meatline/internal/providers/pdf"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createInvoiceRequest struct {
	CustomerID   string             `json:"customer_id"`
	DeliveryDate string             `json:"delivery_date"`
	Items        []orderItemRequest `json:"items"`
}

// CreateInvoice creates a new invoice or appends to the customer's
// pending one for the same delivery date.
func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	deliveryDate, err := parseDate(req.DeliveryDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]invoicedomain.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.OrderItemRequest{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.invoiceSvc.CreateOrAppend(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: deliveryDate,
		Items:        items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		Search string `form:"search"`
		Date   string `form:"date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := invoicedomain.ListInvoiceRequest{Search: strings.TrimSpace(query.Search)}
	if raw := strings.TrimSpace(query.Date); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		req.DeliveryDate = &date
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateInvoiceItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type updateInvoiceRequest struct {
	Status       *string                    `json:"status"`
	DeliveryDate *string                    `json:"delivery_date"`
	Items        []updateInvoiceItemRequest `json:"items"`
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	update := invoicedomain.UpdateInvoiceRequest{ID: id}
	if req.Status != nil {
		status := invoicedomain.InvoiceStatus(strings.TrimSpace(*req.Status))
		update.Status = &status
	}
	if req.DeliveryDate != nil {
		date, err := parseDate(*req.DeliveryDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.DeliveryDate = &date
	}
	for _, item := range req.Items {
		itemID, err := parseID(item.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.Items = append(update.Items, invoicedomain.UpdateItemQuantity{
			LineItemID: itemID,
			Quantity:   item.Quantity,
		})
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateItemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateInvoiceItem changes one line item's quantity and returns the
// invoice with its total recomputed.
func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	itemID, err := parseID(c.Param("item_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.UpdateLineItemQuantity(c.Request.Context(), id, itemID, req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) InvoicePDF(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snapshot, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]pdf.InvoiceItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, pdf.InvoiceItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   "$" + item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			TotalPrice:  "$" + item.TotalPrice.StringFixed(2),
		})
	}

	reader, err := s.pdf.GenerateInvoice(c.Request.Context(), pdf.InvoiceData{
		InvoiceNumber: snapshot.InvoiceNumber,
		CreatedDate:   snapshot.CreatedAt.Format(time.DateTime),
		DeliveryDate:  snapshot.DeliveryDate.Format(time.DateOnly),
		Status:        string(snapshot.Status),
		CustomerID:    snapshot.CustomerID.String(),
		CustomerName:  snapshot.CustomerName,
		CustomerEmail: snapshot.CustomerEmail,
		Items:         items,
		TotalAmount:   "$" + snapshot.TotalAmount.StringFixed(2),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, reader, "invoice_"+snapshot.InvoiceNumber+".pdf")
}

func servePDF(c *gin.Context, reader io.Reader, filename string) {
	content, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
