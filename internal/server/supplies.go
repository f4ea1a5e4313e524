package server

import (
	"net/http"
	"time"

	supplydomain "github.com/frotacloud/fuelstock/internal/supply/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type recordSupplyRequest struct {
	TankID     string           `json:"tank_id"`
	VehicleID  string           `json:"vehicle_id"`
	DriverID   *string          `json:"driver_id"`
	Reference  string           `json:"reference"`
	OccurredAt *time.Time       `json:"occurred_at"`
	Odometer   *decimal.Decimal `json:"odometer"`
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	Notes      *string          `json:"notes"`
	Metadata   map[string]any   `json:"metadata"`
	Status     string           `json:"status"`
}

func (s *Server) RecordSupply(c *gin.Context) {
	var body recordSupplyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.supplySvc.Record(c.Request.Context(), supplydomain.RecordRequest{
		TankID:     body.TankID,
		VehicleID:  body.VehicleID,
		RecordedBy: actorID(c),
		DriverID:   body.DriverID,
		Reference:  body.Reference,
		OccurredAt: body.OccurredAt,
		Odometer:   body.Odometer,
		Quantity:   body.Quantity,
		UnitPrice:  body.UnitPrice,
		Notes:      body.Notes,
		Metadata:   body.Metadata,
		Status:     body.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListSupplies(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_time", "must be RFC3339 or YYYY-MM-DD"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_time", "must be RFC3339 or YYYY-MM-DD"))
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_int", "must be a non-negative integer"))
		return
	}

	items, err := s.supplySvc.List(c.Request.Context(), supplydomain.ListRequest{
		TankID:    c.Query("tank_id"),
		VehicleID: c.Query("vehicle_id"),
		Status:    c.Query("status"),
		From:      from,
		To:        to,
		Limit:     limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetSupplyByID(c *gin.Context) {
	resp, err := s.supplySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
