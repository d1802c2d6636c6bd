package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novatoken/marketplace/internal/identities"
	"github.com/novatoken/marketplace/internal/marketplace"
	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

type authUserRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

func (s *Server) authUser(c *gin.Context) {
	var req authUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("wallet_address", "required"))
		return
	}
	wallet, err := marketplace.NormalizeAddress("wallet_address", req.WalletAddress)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user, isNew, err := s.identities.AuthUser(c.Request.Context(), wallet)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "is_new": isNew})
}

func (s *Server) getUser(c *gin.Context) {
	wallet, err := marketplace.NormalizeAddress("wallet_address", c.Param("wallet"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user, err := s.identities.GetUser(c.Request.Context(), wallet)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	wallet, err := marketplace.NormalizeAddress("wallet_address", c.Param("wallet"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("", "invalid request body"))
		return
	}

	user, err := s.identities.UpdateProfile(c.Request.Context(), wallet, identities.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
