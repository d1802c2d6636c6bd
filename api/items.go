package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/novatoken/marketplace/internal/registry"
	apperrors "github.com/novatoken/marketplace/pkg/errors"
	"github.com/novatoken/marketplace/pkg/models"
)

type registerItemRequest struct {
	TokenID         string          `json:"token_id" binding:"required"`
	ContractAddress string          `json:"contract_address" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Image           string          `json:"image" binding:"required"`
	OwnerAddress    string          `json:"owner_address" binding:"required"`
	CollectionID    *string         `json:"collection_id"`
	Attributes      json.RawMessage `json:"attributes"`
}

func (s *Server) listItems(c *gin.Context) {
	filter := registry.ItemFilter{
		CollectionID: c.Query("collection_id"),
		Limit:        queryInt(c, "limit", 20),
		Skip:         queryInt(c, "skip", 0),
	}
	if raw := c.Query("is_listed"); raw != "" {
		listed, err := strconv.ParseBool(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidation("is_listed", "must be a boolean"))
			return
		}
		filter.IsListed = &listed
	}

	items, err := s.marketplace.Items(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getItem(c *gin.Context) {
	item, err := s.marketplace.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) itemsByOwner(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	items, err := s.marketplace.ItemsByOwner(c.Request.Context(), c.Param("wallet"), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) registerItem(c *gin.Context) {
	var req registerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("", "invalid request body"))
		return
	}

	item := &models.Item{
		TokenID:         req.TokenID,
		ContractAddress: req.ContractAddress,
		Name:            req.Name,
		Description:     req.Description,
		Image:           req.Image,
		OwnerAddress:    req.OwnerAddress,
		Attributes:      string(req.Attributes),
	}
	if req.CollectionID != nil {
		colID, err := uuid.Parse(*req.CollectionID)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidation("collection_id", "must be a uuid"))
			return
		}
		item.CollectionID = &colID
	}

	created, err := s.marketplace.RegisterItem(c.Request.Context(), item)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
