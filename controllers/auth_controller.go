package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flowvahub/rewards/config"
	"github.com/flowvahub/rewards/middleware"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles sign-up, sign-in, sign-out and session introspection.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	// Ref is an optional referral code from a signup link.
	Ref string `json:"ref"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account, bootstraps its profile, attributes the
// referral code when present, and issues a session token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid email or password")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to process password")
		return
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		RegisterIP:   ctx.ClientIP(),
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	err = a.db.WithContext(reqCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		// Eager profile bootstrap; the lazy path in the profile controller
		// still covers accounts created before this existed.
		if err := tx.Create(&models.Profile{UserID: user.ID}).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if code := strings.TrimSpace(req.Ref); code != "" {
			a.attributeReferral(tx, &user, code)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40910, "email already registered")
			return
		}
		respondStoreError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.PublicID, user.Email, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  gin.H{"id": user.PublicID, "email": user.Email},
	})
}

// attributeReferral records a pending referral for the referrer whose code
// matches. Attribution is best-effort: a bad or self-referencing code never
// fails the registration. Only codes in the derived hex alphabet reach the
// prefix query; anything with SQL wildcards is discarded here.
func (a *AuthController) attributeReferral(tx *gorm.DB, referee *models.User, code string) {
	if !utils.IsReferralCode(code) {
		return
	}
	var referrer models.User
	err := tx.Where("public_id LIKE ?", strings.ToLower(code)+"%").First(&referrer).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && utils.Sugar != nil {
			utils.Sugar.Warnf("referral lookup failed for code %s: %v", code, err)
		}
		return
	}
	if referrer.ID == referee.ID {
		return
	}

	referral := models.Referral{
		ReferrerID:   referrer.ID,
		RefereeID:    referee.ID,
		Status:       models.ReferralStatusPending,
		PointsEarned: config.Get().ReferralRewardPoints,
	}
	if err := tx.Create(&referral).Error; err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("failed to record referral for user %d: %v", referee.ID, err)
	}
}

// Login verifies credentials and issues a session token. Rejections are
// inline and do not disturb any existing session.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid email or password")
		return
	}

	reqCtx, cancel := storeCtx(ctx)
	defer cancel()

	var user models.User
	err := a.db.WithContext(reqCtx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "incorrect email or password")
			return
		}
		respondStoreError(ctx, err)
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "incorrect email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.PublicID, user.Email, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  gin.H{"id": user.PublicID, "email": user.Email},
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "missing bearer token")
		return
	}
	tokenString := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenDuration)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(tokenString, expiresAt)

	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the identity bound to the current session.
func (a *AuthController) Me(ctx *gin.Context) {
	publicID, ok := getPublicID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	email, _ := ctx.Get(middleware.ContextEmailKey)

	utils.Success(ctx, gin.H{"id": publicID, "email": email})
}
