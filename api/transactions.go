package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

func (s *Server) transactionsByAddress(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	entries, err := s.marketplace.TransactionsByAddress(c.Request.Context(), c.Param("wallet"), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
