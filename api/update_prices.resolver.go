package api

import (
	"fmt"
	"time"

	"driftbacktest/internal"

	"github.com/gin-gonic/gin"
)

type UpdatePricesRequest struct {
	Symbols []string `json:"symbols"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
}

func (m ApiHandler) updatePrices(c *gin.Context) {
	var requestBody UpdatePricesRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	if len(requestBody.Symbols) == 0 {
		returnErrorJsonCode(fmt.Errorf("no symbols given"), c, 400)
		return
	}

	start, err := time.Parse(time.DateOnly, requestBody.Start)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	end, err := time.Parse(time.DateOnly, requestBody.End)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	if end.Before(start) {
		returnErrorJsonCode(fmt.Errorf("end date cannot be before start date"), c, 400)
		return
	}

	ctx := c.Request.Context()
	for _, symbol := range requestBody.Symbols {
		if err := internal.IngestPrices(ctx, symbol, start, end, m.PriceRepository); err != nil {
			returnErrorJson(err, c)
			return
		}
	}

	c.JSON(200, map[string]string{"message": "ok"})
}
