package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
)

func (s *Server) SubmitApplication(c *gin.Context) {
	var req applicationdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	app, err := s.appSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": app})
}

func (s *Server) ListActiveParks(c *gin.Context) {
	parks, err := s.parkSvc.List(c.Request.Context(), parkdomain.ListParkRequest{
		Status: parkdomain.ParkStatusActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": parks})
}

func (s *Server) GetFeeOptions(c *gin.Context) {
	category := feedomain.Category(strings.TrimSpace(c.Param("category")))
	options, err := s.feeSvc.FeeOptionsFor(category)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": options})
}

func (s *Server) ListInsuranceTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.insuranceSvc.Tiers()})
}

func (s *Server) GetInsuranceTier(c *gin.Context) {
	info, err := s.insuranceSvc.TierFor(c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": info})
}

func (s *Server) intakeRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.intakeLimiter.Enabled() {
			c.Next()
			return
		}

		result := s.intakeLimiter.Allow(c.Request.Context(), c.ClientIP())
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath())
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
