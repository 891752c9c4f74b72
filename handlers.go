package main

import (
	"errors"
	"net/http"
	"time"

	"perpusku/models"
	"perpusku/pkg/circulation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/login", loginHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.PUT("/me", updateProfileHandler)
	authGroup.PUT("/me/password", changePasswordHandler)

	authGroup.GET("/books", listBooksHandler)
	authGroup.POST("/books", createBookHandler)
	authGroup.GET("/books/find", findBookHandler)
	authGroup.PUT("/books/:id", updateBookHandler)
	authGroup.DELETE("/books/:id", deleteBookHandler)
	authGroup.GET("/books/:id/borrowers", bookBorrowersHandler)
	authGroup.GET("/books/:id/loan-count", bookLoanCountHandler)
	authGroup.POST("/books/:id/cover", uploadCoverHandler)

	authGroup.GET("/members", listMembersHandler)
	authGroup.POST("/members", createMemberHandler)
	authGroup.GET("/members/find", findMemberHandler)
	authGroup.GET("/members/generate-code", generateMemberCodeHandler)
	authGroup.PUT("/members/:id", updateMemberHandler)
	authGroup.DELETE("/members/:id", deleteMemberHandler)
	authGroup.GET("/members/:id/loans", memberLoansHandler)
	authGroup.GET("/members/:id/stats", memberStatsHandler)

	authGroup.POST("/loans", borrowHandler)
	authGroup.POST("/loans/:id/return", returnHandler)
	authGroup.GET("/loans/active", activeLoansHandler)
	authGroup.GET("/loans/overdue", overdueLoansHandler)
	authGroup.GET("/loans/search", searchLoansHandler)

	authGroup.GET("/fines", listFinesHandler)
	authGroup.POST("/fines", createFineHandler)
	authGroup.POST("/fines/:id/pay", payFineHandler)

	authGroup.GET("/dashboard/stats", statsHandler)
	authGroup.GET("/dashboard/recent-activity", recentActivityHandler)
	authGroup.GET("/dashboard/weekly-circulation", weeklyCirculationHandler)
	authGroup.GET("/dashboard/popular-categories", popularCategoriesHandler)
	authGroup.GET("/dashboard/most-borrowed", mostBorrowedHandler)
	authGroup.GET("/dashboard/member-activity", memberActivityHandler)
	authGroup.GET("/dashboard/monthly-new-members", monthlyNewMembersHandler)

	authGroup.GET("/settings", getSettingsHandler)
	authGroup.PUT("/settings/:key", updateSettingHandler)
	authGroup.POST("/admin/reset", resetDatabaseHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		if sub, ok := claims["sub"].(float64); ok {
			c.Set("user_id", uint(sub))
		}
		c.Next()
	}
}

// respondError maps each circulation error condition to its HTTP status;
// the body carries the condition's message so the client can react to it.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, circulation.ErrBookNotFound),
		errors.Is(err, circulation.ErrMemberNotFound),
		errors.Is(err, circulation.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, circulation.ErrOutOfStock),
		errors.Is(err, circulation.ErrAlreadyReturned),
		errors.Is(err, circulation.ErrBookHasActiveLoans),
		errors.Is(err, circulation.ErrMemberInactive),
		errors.Is(err, circulation.ErrBookUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, circulation.ErrInvalidLoanDays):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      float64(user.ID),
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "user": user})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func updateProfileHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name   string `json:"name" binding:"required"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{"name": req.Name, "avatar": req.Avatar}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	var updated models.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func changePasswordHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, errWrongOldPassword) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
