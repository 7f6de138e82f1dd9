package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flowvahub/rewards/ledger"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

const rewardsCacheKey = "cache:rewards:catalog"

// RewardController serves the redeemable catalog and redemptions.
type RewardController struct {
	db *gorm.DB
}

// NewRewardController creates a new controller instance.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// ListRewards returns the catalog cheapest-first. The catalog changes rarely
// and only outside this service, so it is cached in Redis.
func (r *RewardController) ListRewards(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(rewardsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var rewards []models.Reward
	err := r.db.WithContext(reqCtx).
		Order("points_required ASC").
		Find(&rewards).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	payload := gin.H{"items": rewards}
	utils.CacheSetJSON(rewardsCacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	utils.Success(ctx, payload)
}

// Redeem debits the reward's cost from the caller's balance and appends the
// redemption record, both in one transaction against the locked profile row.
// A balance short of the cost rejects with the shortfall; the balance is
// never clamped below zero.
func (r *RewardController) Redeem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	rewardID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid reward id")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var newBalance int
	var reward models.Reward
	err = r.db.WithContext(reqCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, uint(rewardID)).Error; err != nil {
			return err
		}
		if !reward.Available {
			return ledger.ErrRewardUnavailable
		}

		profile, err := getOrCreateProfile(tx, userID)
		if err != nil {
			return err
		}

		balance, err := ledger.EvaluateRedemption(profile.PointsBalance, reward.PointsRequired)
		if err != nil {
			return err
		}

		profile.PointsBalance = balance
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		redemption := models.Redemption{
			UserID:      userID,
			RewardID:    reward.ID,
			PointsSpent: reward.PointsRequired,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}

		newBalance = balance
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "reward not found")
			return
		}
		respondLedgerError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"reward":         reward.Name,
		"points_spent":   reward.PointsRequired,
		"points_balance": newBalance,
	})
}
