package server

import (
	"net/http"

	vehicledomain "github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListVehicles(c *gin.Context) {
	includeArchived, err := parseOptionalBool(c.Query("include_archived"))
	if err != nil {
		AbortWithError(c, newValidationError("include_archived", "invalid_bool", "must be true or false"))
		return
	}

	req := vehicledomain.ListRequest{}
	if includeArchived != nil {
		req.IncludeArchived = *includeArchived
	}

	items, err := s.vehicleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateVehicle(c *gin.Context) {
	var req vehicledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetVehicleByID(c *gin.Context) {
	resp, err := s.vehicleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ArchiveVehicle(c *gin.Context) {
	resp, err := s.vehicleSvc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
