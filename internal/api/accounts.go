package api

import (
	"net/http"
	"strconv"

	"github.com/arencloud/pagevault/internal/db"
	"github.com/arencloud/pagevault/internal/middleware"
	"github.com/arencloud/pagevault/internal/models"

	"github.com/gin-gonic/gin"
)

// Credential-set management. Plain REST status codes here; the envelope is a
// page-operation contract only. The secret key is write-only: the model never
// serializes it back.

func registerAccounts(r *gin.RouterGroup) {
	r.GET("/accounts", listAccounts)
	r.POST("/accounts", createAccount)
	r.PUT("/accounts/:id", updateAccount)
	r.DELETE("/accounts/:id", deleteAccount)
}

func listAccounts(c *gin.Context) {
	var items []models.CloudAccount
	if err := db.DB.Where("user_id = ?", middleware.UserID(c)).Order("label asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createAccount(c *gin.Context) {
	var in struct {
		Label     string `json:"label"`
		Provider  string `json:"provider"`
		AccessKey string `json:"accessKey"`
		SecretKey string `json:"secretKey"`
		Region    string `json:"region"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Label == "" || in.AccessKey == "" || in.SecretKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label, accessKey and secretKey are required"})
		return
	}
	if in.Provider == "" {
		in.Provider = "s3"
	}
	acct := models.CloudAccount{
		UserID:    middleware.UserID(c),
		Label:     in.Label,
		Provider:  in.Provider,
		AccessKey: in.AccessKey,
		SecretKey: in.SecretKey,
		Region:    in.Region,
	}
	if err := db.DB.Create(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func updateAccount(c *gin.Context) {
	acct, ok := ownedAccount(c)
	if !ok {
		return
	}
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Patch-like update: apply provided fields only
	if label, ok := in["label"].(string); ok {
		acct.Label = label
	}
	if ak, ok := in["accessKey"].(string); ok {
		acct.AccessKey = ak
	}
	if sk, ok := in["secretKey"].(string); ok {
		acct.SecretKey = sk
	}
	if rg, ok := in["region"].(string); ok {
		acct.Region = rg
	}
	if acct.Label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}
	if err := db.DB.Save(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, acct)
}

func deleteAccount(c *gin.Context) {
	acct, ok := ownedAccount(c)
	if !ok {
		return
	}
	if err := db.DB.Delete(&models.CloudAccount{}, acct.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedAccount loads the account in the path, scoped to the caller. Writes
// the error response itself when the lookup fails.
func ownedAccount(c *gin.Context) (models.CloudAccount, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return models.CloudAccount{}, false
	}
	var acct models.CloudAccount
	if err := db.DB.Where("id = ? AND user_id = ?", id, middleware.UserID(c)).First(&acct).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return models.CloudAccount{}, false
	}
	return acct, true
}
