package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowvahub/rewards/config"
	"github.com/flowvahub/rewards/ledger"
	"github.com/flowvahub/rewards/middleware"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

// getUserID extracts the authenticated user's row id from the request context.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// getPublicID extracts the authenticated user's opaque public id.
func getPublicID(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(middleware.ContextPublicIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// storeCtx derives a request context with the configured store deadline.
// Operations that outlive it surface to the client as store unavailable.
func storeCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(config.Get().StoreTimeoutSec) * time.Second
	return context.WithTimeout(ctx.Request.Context(), timeout)
}

// getOrCreateProfile fetches the user's profile under a FOR UPDATE lock,
// inserting the zero profile on first touch. A duplicate-key failure means a
// concurrent session bootstrapped first; the existing row is re-fetched and
// used instead of treating the conflict as an error.
func getOrCreateProfile(tx *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.Profile{UserID: userID}
	if err := tx.Create(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

// respondLedgerError converts ledger and store failures into the uniform
// error envelope. Expected rejections map to 400; everything else is the
// store-unavailable path.
func respondLedgerError(ctx *gin.Context, err error) {
	var insufficient *ledger.InsufficientPointsError
	switch {
	case errors.Is(err, ledger.ErrAlreadyCheckedIn):
		utils.Error(ctx, http.StatusBadRequest, 40030, "already checked in today")
	case errors.As(err, &insufficient):
		utils.Respond(ctx, http.StatusBadRequest, 40031, err.Error(), gin.H{
			"shortfall": insufficient.Shortfall(),
		})
	case errors.Is(err, ledger.ErrRewardUnavailable):
		utils.Error(ctx, http.StatusBadRequest, 40032, "reward is not available")
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	default:
		respondStoreError(ctx, err)
	}
}

// respondStoreError reports a transient store failure. No automatic retry is
// attempted; the user re-triggers the action.
func respondStoreError(ctx *gin.Context, err error) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf("store operation failed: %v", err)
	}
	utils.Error(ctx, http.StatusServiceUnavailable, 50330, "store unavailable, please try again")
}
