package handlers

import (
	"math"
	"net/http"
	"strings"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/firebase"
	"milk-backend/logging"
	"milk-backend/models"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RewardHandler struct {
	Store   database.Store
	Storage firebase.StorageClient
}

func (h *RewardHandler) ListRewards(c *gin.Context) {
	rewards, err := h.Store.ListRewards(c.Request.Context())
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch rewards")
		return
	}
	c.JSON(http.StatusOK, rewards)
}

func (h *RewardHandler) GetReward(c *gin.Context) {
	reward, err := h.Store.GetReward(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Reward not found", "Failed to fetch reward")
		return
	}
	c.JSON(http.StatusOK, reward)
}

func (h *RewardHandler) CreateReward(c *gin.Context) {
	var req dtos.CreateRewardRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Cost.Truthy() {
		badRequest(c, "title and cost are required")
		return
	}
	cost := int(math.Round(req.Cost.Value))

	reward := models.Reward{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Cost:        cost,
		Description: req.Description,
		Icon:        req.Icon,
		CreatedAt:   models.Now(),
	}
	if err := h.Store.CreateReward(c.Request.Context(), &reward); err != nil {
		storeError(c, err, "Reward not found", "Failed to create reward")
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// UpdateReward applies only the supplied fields. A cost that is not a number
// keeps the previous value.
func (h *RewardHandler) UpdateReward(c *gin.Context) {
	var req dtos.UpdateRewardRequest
	if !bindJSON(c, &req) {
		return
	}

	reward, err := h.Store.UpdateReward(c.Request.Context(), c.Param("id"), func(r *models.Reward) error {
		if req.Title != nil {
			r.Title = *req.Title
		}
		if req.Cost.Valid {
			r.Cost = int(math.Round(req.Cost.Value))
		}
		if req.Description != nil {
			r.Description = *req.Description
		}
		if req.Icon != nil {
			r.Icon = *req.Icon
		}
		return nil
	})
	if err != nil {
		storeError(c, err, "Reward not found", "Failed to update reward")
		return
	}
	c.JSON(http.StatusOK, reward)
}

func (h *RewardHandler) DeleteReward(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	reward, err := h.Store.GetReward(ctx, id)
	if err != nil {
		storeError(c, err, "Reward not found", "Failed to delete reward")
		return
	}
	if err := h.Store.DeleteReward(ctx, id); err != nil {
		storeError(c, err, "Reward not found", "Failed to delete reward")
		return
	}
	h.removeIcon(c, reward.Icon)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UploadIcon replaces a reward icon with an image stored in the bucket. The
// image comes either as a multipart "icon" file or as a JSON {"url"} to copy.
func (h *RewardHandler) UploadIcon(c *gin.Context) {
	if h.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Icon uploads are not configured"})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	reward, err := h.Store.GetReward(ctx, id)
	if err != nil {
		storeError(c, err, "Reward not found", "Failed to fetch reward")
		return
	}

	var iconURL string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("icon")
		if err != nil {
			badRequest(c, "icon file is required")
			return
		}
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			badRequest(c, err.Error())
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			badRequest(c, "Failed to open uploaded file")
			return
		}
		defer file.Close()

		iconURL, err = h.Storage.UploadRewardIcon(ctx, file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			logging.FromContext(ctx).Error("Icon upload failed", "reward_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Icon upload failed"})
			return
		}
	} else {
		var req dtos.IconURLRequest
		if !bindJSON(c, &req) {
			return
		}
		iconURL, err = h.Storage.DownloadRewardIcon(ctx, req.URL, id)
		if err != nil {
			logging.FromContext(ctx).Warn("Icon download failed", "reward_id", id, "url", req.URL, "error", err)
			badRequest(c, "Could not fetch an image from that URL")
			return
		}
	}

	updated, err := h.Store.UpdateReward(ctx, id, func(r *models.Reward) error {
		r.Icon = iconURL
		return nil
	})
	if err != nil {
		h.removeIcon(c, iconURL)
		storeError(c, err, "Reward not found", "Failed to update reward")
		return
	}

	h.removeIcon(c, reward.Icon)
	c.JSON(http.StatusOK, updated)
}

// removeIcon deletes an icon object this service uploaded earlier.
func (h *RewardHandler) removeIcon(c *gin.Context, icon string) {
	if h.Storage == nil {
		return
	}
	objectPath, ok := utils.UploadedIconPath(icon)
	if !ok {
		return
	}
	if err := h.Storage.DeleteFile(c.Request.Context(), objectPath); err != nil {
		logging.FromContext(c.Request.Context()).Warn("Failed to delete old icon", "object", objectPath, "error", err)
	}
}
