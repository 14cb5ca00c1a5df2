package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/meatline/internal/providers/pdf"
)

// CuttingListRows returns the delivery-day rows as JSON, in the exact
// order the document renders them.
func (s *Server) CuttingListRows(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.cuttingSvc.Rows(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) CuttingListPDF(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.cuttingSvc.Rows(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	day := date.Format(time.DateOnly)
	reader, err := s.pdf.GenerateCuttingList(c.Request.Context(), pdf.CuttingListData{
		Title: day,
		Rows:  rows,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, reader, "cutting_list_"+day+".pdf")
}
