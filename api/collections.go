package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
	"github.com/novatoken/marketplace/pkg/models"
)

type createCollectionRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	ContractAddress string           `json:"contract_address" binding:"required"`
	BannerImage     string           `json:"banner_image"`
	LogoImage       string           `json:"logo_image"`
	CreatorAddress  string           `json:"creator_address" binding:"required"`
	FloorPrice      *decimal.Decimal `json:"floor_price"`
	ChainID         int              `json:"chain_id"`
}

func (s *Server) listCollections(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	skip := queryInt(c, "skip", 0)

	collections, err := s.marketplace.Collections(c.Request.Context(), limit, skip)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, collections)
}

func (s *Server) getCollection(c *gin.Context) {
	collection, err := s.marketplace.GetCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (s *Server) createCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("", "invalid request body"))
		return
	}

	collection := &models.Collection{
		Name:            req.Name,
		Description:     req.Description,
		ContractAddress: req.ContractAddress,
		BannerImage:     req.BannerImage,
		LogoImage:       req.LogoImage,
		CreatorAddress:  req.CreatorAddress,
		FloorPrice:      req.FloorPrice,
		ChainID:         req.ChainID,
	}

	created, err := s.marketplace.CreateCollection(c.Request.Context(), collection)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
