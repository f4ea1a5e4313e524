package server

import (
	"net/http"

	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListTanks(c *gin.Context) {
	includeArchived, err := parseOptionalBool(c.Query("include_archived"))
	if err != nil {
		AbortWithError(c, newValidationError("include_archived", "invalid_bool", "must be true or false"))
		return
	}

	req := tankdomain.ListRequest{}
	if includeArchived != nil {
		req.IncludeArchived = *includeArchived
	}

	items, err := s.tankSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateTank(c *gin.Context) {
	var req tankdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tankSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetTankByID(c *gin.Context) {
	resp, err := s.tankSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) RefillTank(c *gin.Context) {
	var req tankdomain.RefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.tankSvc.Refill(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdjustTank(c *gin.Context) {
	var req tankdomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.tankSvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ArchiveTank(c *gin.Context) {
	resp, err := s.tankSvc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
