package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
)

func (s *Server) ListParks(c *gin.Context) {
	parks, err := s.parkSvc.List(c.Request.Context(), parkdomain.ListParkRequest{
		Status: parkdomain.ParkStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": parks})
}

func (s *Server) GetPark(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), parkdomain.ErrInvalidPark)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	park, err := s.parkSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": park})
}
