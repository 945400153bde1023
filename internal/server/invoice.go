package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
)

type listInvoicesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status: invoicedomain.InvoiceStatus(strings.ToLower(strings.TrimSpace(query.Status))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), invoicedomain.ErrInvalidInvoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) PrintInvoice(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), invoicedomain.ErrInvalidInvoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.invoiceSvc.RenderHTML(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), invoicedomain.ErrInvalidInvoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, id.String()),
	})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), invoicedomain.ErrInvalidInvoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.MarkInvoicePaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
