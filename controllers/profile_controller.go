package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

// profileView shapes the ledger for the dashboard: the last check-in is a
// bare calendar date, matching the granularity the streak logic works at.
type profileView struct {
	PointsBalance int     `json:"points_balance"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	LastCheckIn   *string `json:"last_check_in"`
}

func newProfileView(p *models.Profile) *profileView {
	view := &profileView{
		PointsBalance: p.PointsBalance,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
	}
	if p.LastCheckIn != nil {
		s := p.LastCheckIn.Format("2006-01-02")
		view.LastCheckIn = &s
	}
	return view
}

// ProfileController serves the points/streak ledger backing the dashboard.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a new controller instance.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

// GetProfile returns the caller's profile, lazily creating the zero row on
// first load. Bootstrap runs in a transaction so a concurrent first load from
// another tab resolves to the single existing row.
func (p *ProfileController) GetProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	profile, err := fetchProfile(p.db.WithContext(reqCtx), userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Success(ctx, profile)
}

// fetchProfile wraps the race-tolerant bootstrap in its own transaction.
func fetchProfile(db *gorm.DB, userID uint) (*profileView, error) {
	var view *profileView
	err := db.Transaction(func(tx *gorm.DB) error {
		profile, err := getOrCreateProfile(tx, userID)
		if err != nil {
			return err
		}
		view = newProfileView(profile)
		return nil
	})
	return view, err
}
