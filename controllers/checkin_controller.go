package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowvahub/rewards/config"
	"github.com/flowvahub/rewards/ledger"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

// CheckInController handles the daily check-in protocol.
type CheckInController struct {
	db *gorm.DB
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB) *CheckInController {
	return &CheckInController{db: db}
}

// DailyCheckIn records today's check-in. The evaluator runs against the
// profile row held under a FOR UPDATE lock, and the profile update and the
// check-in append commit in the same transaction, so two sessions racing on
// the same day cannot double-credit: the loser hits the unique
// (user_id, check_in_date) index and surfaces as already-checked-in.
func (c *CheckInController) DailyCheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	today := time.Now()
	reward := config.Get().CheckInRewardPoints

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var result ledger.CheckInResult
	var streakJustStarted bool
	err := c.db.WithContext(reqCtx).Transaction(func(tx *gorm.DB) error {
		profile, err := getOrCreateProfile(tx, userID)
		if err != nil {
			return err
		}
		firstEver := profile.LastCheckIn == nil

		res, err := ledger.EvaluateCheckIn(ledger.ProfileState{
			PointsBalance: profile.PointsBalance,
			CurrentStreak: profile.CurrentStreak,
			LongestStreak: profile.LongestStreak,
			LastCheckIn:   profile.LastCheckIn,
		}, today, reward)
		if err != nil {
			return err
		}

		record := models.CheckIn{
			UserID:       userID,
			CheckInDate:  res.LastCheckIn,
			PointsEarned: res.PointsEarned,
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent session won the append for today.
				return ledger.ErrAlreadyCheckedIn
			}
			return err
		}

		last := res.LastCheckIn
		profile.PointsBalance = res.PointsBalance
		profile.CurrentStreak = res.CurrentStreak
		profile.LongestStreak = res.LongestStreak
		profile.LastCheckIn = &last
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		if firstEver {
			if err := completePendingReferral(tx, userID); err != nil {
				return err
			}
		}

		result = res
		streakJustStarted = firstEver
		return nil
	})
	if err != nil {
		respondLedgerError(ctx, err)
		return
	}

	if utils.Sugar != nil && streakJustStarted {
		utils.Sugar.Infof("user %d started their streak", userID)
	}

	utils.Success(ctx, gin.H{
		"points_earned":  result.PointsEarned,
		"points_balance": result.PointsBalance,
		"current_streak": result.CurrentStreak,
		"longest_streak": result.LongestStreak,
		"last_check_in":  result.LastCheckIn.Format("2006-01-02"),
	})
}

// completePendingReferral moves the referee's pending referral to completed
// and credits the referrer, inside the caller's transaction. The referral
// completes on the referee's first check-in. The referrer's balance is
// credited with a single-statement increment rather than a locked
// read-modify-write: the caller already holds the referee's profile lock,
// and taking a second FOR UPDATE read here would acquire profile locks in
// referee-then-referrer order with no global ordering.
func completePendingReferral(tx *gorm.DB, refereeID uint) error {
	var referral models.Referral
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("referee_id = ? AND status = ?", refereeID, models.ReferralStatusPending).
		First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	referral.Status = models.ReferralStatusCompleted
	referral.CompletedAt = &now
	if err := tx.Save(&referral).Error; err != nil {
		return err
	}

	return creditReferrer(tx, referral.ReferrerID, referral.PointsEarned)
}

// creditReferrer adds points to the referrer's balance atomically, creating
// the profile row when the referrer has never loaded the dashboard.
func creditReferrer(tx *gorm.DB, referrerID uint, points int) error {
	res := tx.Model(&models.Profile{}).
		Where("user_id = ?", referrerID).
		UpdateColumn("points_balance", gorm.Expr("points_balance + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	profile := models.Profile{UserID: referrerID, PointsBalance: points}
	if err := tx.Create(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// A concurrent bootstrap created the row between the update and the
		// insert; the increment now has a target.
		return tx.Model(&models.Profile{}).
			Where("user_id = ?", referrerID).
			UpdateColumn("points_balance", gorm.Expr("points_balance + ?", points)).Error
	}
	return nil
}

// Status returns the streak counters and whether today's check-in is still
// available, for the dashboard's check-in card.
func (c *CheckInController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	profile, err := fetchProfile(c.db.WithContext(reqCtx), userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	canCheckIn := true
	if profile.LastCheckIn != nil {
		today := ledger.DateOnly(time.Now()).Format("2006-01-02")
		canCheckIn = *profile.LastCheckIn != today
	}

	utils.Success(ctx, gin.H{
		"points_balance":     profile.PointsBalance,
		"current_streak":     profile.CurrentStreak,
		"longest_streak":     profile.LongestStreak,
		"last_check_in":      profile.LastCheckIn,
		"can_check_in_today": canCheckIn,
	})
}

// Recent returns the latest check-ins, newest first, for the streak calendar.
func (c *CheckInController) Recent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var checkIns []models.CheckIn
	err := c.db.WithContext(reqCtx).
		Where("user_id = ?", userID).
		Order("check_in_date DESC").
		Limit(7).
		Find(&checkIns).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"items": checkIns})
}
