package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	lifecycledomain "github.com/smallbiznis/permitdesk/internal/lifecycle/domain"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
)

const maxInsuranceDocumentBytes = 10 << 20

// insuranceDocumentTypes maps accepted document types to their stored extension.
var insuranceDocumentTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
}

type listApplicationsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	ParkID    string `form:"park_id"`
}

type disapproveRequest struct {
	Reason       string `json:"reason"`
	NotifyMethod string `json:"notify_method"`
}

func (s *Server) ListApplications(c *gin.Context) {
	var query listApplicationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appSvc.List(c.Request.Context(), applicationdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status: applicationdomain.ApplicationStatus(strings.ToLower(strings.TrimSpace(query.Status))),
		ParkID: strings.TrimSpace(query.ParkID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Applications, "page_info": resp.PageInfo})
}

func (s *Server) GetApplication(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	app, err := s.appSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) GetPaymentStatus(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status, err := s.appSvc.PaymentStatus(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}

func (s *Server) ApproveApplication(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.Approve(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) DisapproveApplication(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req disapproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	app, err := s.lifecycleSvc.Disapprove(c.Request.Context(), lifecycledomain.DisapproveRequest{
		ApplicationID: id,
		Reason:        req.Reason,
		NotifyMethod:  req.NotifyMethod,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) DeleteApplication(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.lifecycleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) MarkApplicationFeePaid(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	app, err := s.appSvc.MarkApplicationFeePaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) MarkLocationFeePaid(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	app, err := s.appSvc.MarkLocationFeePaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) UploadInsuranceDocument(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ctx := c.Request.Context()

	if _, err := s.appSvc.Get(ctx, id); err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxInsuranceDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			AbortWithError(c, ErrPayloadTooLarge)
			return
		}
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(body) == 0 {
		AbortWithError(c, newValidationError("body", "empty_document", "document body is empty"))
		return
	}

	// The declared type must agree with the bytes.
	detected := mimetype.Detect(body)
	ext, ok := insuranceDocumentTypes[detected.String()]
	declared := strings.ToLower(strings.TrimSpace(strings.Split(c.ContentType(), ";")[0]))
	if !ok || declared != detected.String() {
		AbortWithError(c, newValidationError("content_type", "unsupported_document_type", "document must be a PDF, PNG or JPEG"))
		return
	}

	key := fmt.Sprintf("insurance/%s/%s.%s", id.String(), ulid.Make().String(), ext)
	if err := s.storage.Put(ctx, key, detected.String(), bytes.NewReader(body)); err != nil {
		AbortWithError(c, err)
		return
	}

	app, err := s.appSvc.AttachInsuranceDocument(ctx, id, key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) GetInsuranceDocument(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ctx := c.Request.Context()

	app, err := s.appSvc.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if app.InsuranceDocumentKey == nil || *app.InsuranceDocumentKey == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	url, err := s.storage.PresignGet(ctx, *app.InsuranceDocumentKey, s.cfg.AWS.S3PresignTTL)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"key":        *app.InsuranceDocumentKey,
		"url":        url,
		"expires_in": int(s.cfg.AWS.S3PresignTTL.Seconds()),
	}})
}

func (s *Server) RenderPermit(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.permitSvc.Render(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
