package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flowvahub/rewards/config"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

// ReferralController serves referral codes, stats, and share crediting.
type ReferralController struct {
	db *gorm.DB
}

// NewReferralController creates a new controller instance.
func NewReferralController(db *gorm.DB) *ReferralController {
	return &ReferralController{db: db}
}

// referralStats is the aggregate over completed referrals; it is recomputed
// on each load, never persisted.
type referralStats struct {
	Count        int `json:"count"`
	PointsEarned int `json:"pointsEarned"`
}

// GetReferralInfo returns the caller's derived referral code, the signup
// link to share, and the completed-referral aggregate.
func (r *ReferralController) GetReferralInfo(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	publicID, ok := getPublicID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var stats referralStats
	err := r.db.WithContext(reqCtx).
		Model(&models.Referral{}).
		Select("COUNT(*) AS count, COALESCE(SUM(points_earned), 0) AS points_earned").
		Where("referrer_id = ? AND status = ?", userID, models.ReferralStatusCompleted).
		Scan(&stats).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	code := utils.DeriveReferralCode(publicID)
	utils.Success(ctx, gin.H{
		"referral_code": code,
		"signup_link":   utils.SignupLink(config.Get().AppBaseURL, code),
		"stats":         stats,
	})
}

type shareRequest struct {
	Platform  string `json:"platform" binding:"required"`
	ShareType string `json:"share_type"`
}

// CreateShare logs an outbound share, credits the share reward, and returns
// the platform URL for the client to open. The share row and the balance
// update commit together.
func (r *ReferralController) CreateShare(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	publicID, ok := getPublicID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	var req shareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "platform is required")
		return
	}
	if req.ShareType == "" {
		req.ShareType = "tool_stack"
	}

	cfg := config.Get()
	link := utils.SignupLink(cfg.AppBaseURL, utils.DeriveReferralCode(publicID))
	shareURL := utils.ShareURL(req.Platform, link)
	if shareURL == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "unsupported share platform")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var newBalance int
	err := r.db.WithContext(reqCtx).Transaction(func(tx *gorm.DB) error {
		profile, err := getOrCreateProfile(tx, userID)
		if err != nil {
			return err
		}

		share := models.Share{
			UserID:       userID,
			Platform:     req.Platform,
			ShareType:    req.ShareType,
			PointsEarned: cfg.ShareRewardPoints,
		}
		if err := tx.Create(&share).Error; err != nil {
			return err
		}

		profile.PointsBalance += cfg.ShareRewardPoints
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		newBalance = profile.PointsBalance
		return nil
	})
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"share_url":      shareURL,
		"points_earned":  cfg.ShareRewardPoints,
		"points_balance": newBalance,
	})
}
