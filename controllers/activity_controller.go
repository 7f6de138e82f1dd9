package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

const activitiesCacheKey = "cache:activities:catalog"

// ActivityController serves the earn tab's point-earning activities.
type ActivityController struct {
	db *gorm.DB
}

// NewActivityController creates a new controller instance.
func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{db: db}
}

// ListActivities returns the catalog ordered by points, highest first.
func (a *ActivityController) ListActivities(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(activitiesCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var activities []models.Activity
	err := a.db.WithContext(reqCtx).
		Order("points DESC").
		Find(&activities).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	payload := gin.H{"items": activities}
	utils.CacheSetJSON(activitiesCacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	utils.Success(ctx, payload)
}

// CompleteActivity credits the activity's points and appends the completion
// record in one transaction.
func (a *ActivityController) CompleteActivity(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	activityID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid activity id")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var newBalance int
	var activity models.Activity
	err = a.db.WithContext(reqCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&activity, uint(activityID)).Error; err != nil {
			return err
		}

		profile, err := getOrCreateProfile(tx, userID)
		if err != nil {
			return err
		}

		profile.PointsBalance += activity.Points
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		completion := models.ActivityCompletion{
			UserID:       userID,
			ActivityID:   activity.ID,
			PointsEarned: activity.Points,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		newBalance = profile.PointsBalance
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40441, "activity not found")
			return
		}
		respondStoreError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"activity":       activity.Name,
		"points_earned":  activity.Points,
		"points_balance": newBalance,
	})
}
