package main

import (
	"net/http"

	"perpusku/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func getSettingsHandler(c *gin.Context) {
	var rows []models.Setting
	if err := db.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	settings := make(map[string]string, len(rows))
	for _, s := range rows {
		settings[s.Key] = s.Value
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettingHandler upserts one key.
func updateSettingHandler(c *gin.Context) {
	key := c.Param("key")
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	setting := models.Setting{Key: key, Value: req.Value}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}

// resetDatabaseHandler wipes circulation data and restores the admin
// password, in one transaction. Users are kept so the operator stays
// logged in.
func resetDatabaseHandler(c *gin.Context) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM fines",
			"DELETE FROM loans",
			"DELETE FROM books",
			"DELETE FROM members",
		} {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.User{}).
			Where("username = ?", "admin").
			Update("password", "admin123").Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database reset"})
}
