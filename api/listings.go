package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

type createListingRequest struct {
	ItemID        string          `json:"item_id" binding:"required"`
	SellerAddress string          `json:"seller_address" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
}

type buyListingRequest struct {
	BuyerAddress string `json:"buyer_address" binding:"required"`
	TxHash       string `json:"tx_hash" binding:"required"`
}

type cancelListingRequest struct {
	SellerAddress string `json:"seller_address" binding:"required"`
}

func (s *Server) createListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("", "invalid request body"))
		return
	}

	listing, err := s.marketplace.ListItem(c.Request.Context(), req.ItemID, req.SellerAddress, req.Price)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (s *Server) activeListings(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	listings, err := s.marketplace.ActiveListings(c.Request.Context(), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (s *Server) buyListing(c *gin.Context) {
	var req buyListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("", "invalid request body"))
		return
	}

	entry, err := s.marketplace.BuyListing(c.Request.Context(), c.Param("id"), req.BuyerAddress, req.TxHash)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction_id": entry.ID})
}

func (s *Server) cancelListing(c *gin.Context) {
	var req cancelListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("seller_address", "required"))
		return
	}

	if _, err := s.marketplace.CancelListing(c.Request.Context(), c.Param("id"), req.SellerAddress); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
