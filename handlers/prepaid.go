package handlers

import (
	"errors"
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/logging"
	"milk-backend/models"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

// cardCodeAttempts bounds the retries when a drawn code is already in use.
const cardCodeAttempts = 5

type PrepaidHandler struct {
	Store database.Store
}

func (h *PrepaidHandler) ListCards(c *gin.Context) {
	cards, err := h.Store.ListPrepaid(c.Request.Context())
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch prepaid cards")
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *PrepaidHandler) Purchase(c *gin.Context) {
	var req dtos.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Value.Valid || req.Value.Value <= 0 {
		badRequest(c, "value must be a positive number")
		return
	}
	bonus := req.Bonus.Or(0)
	if bonus < 0 {
		badRequest(c, "bonus cannot be negative")
		return
	}
	ctx := c.Request.Context()

	code := utils.UniqueCardCode(cardCodeAttempts, func(code string) bool {
		_, err := h.Store.GetPrepaidByCode(ctx, code)
		return err == nil
	})
	card := models.NewPrepaidCard(code, req.Title, req.Value.Value, bonus, req.UserID, models.Now())
	if err := h.Store.CreatePrepaid(ctx, &card); err != nil {
		storeError(c, err, "Card not found", "Failed to create prepaid card")
		return
	}

	logging.FromContext(ctx).Info("Prepaid card issued", "card_id", card.ID, "total", card.Total)
	c.JSON(http.StatusCreated, card)
}

func (h *PrepaidHandler) GetByCode(c *gin.Context) {
	card, err := h.Store.GetPrepaidByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		storeError(c, err, "Card not found", "Failed to fetch prepaid card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *PrepaidHandler) Adjust(c *gin.Context) {
	var req dtos.AdjustRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Delta.Truthy() {
		badRequest(c, models.ErrZeroDelta.Error())
		return
	}

	card, err := h.Store.UpdatePrepaidByCode(c.Request.Context(), c.Param("code"), func(p *models.PrepaidCard) error {
		return p.Adjust(req.Delta.Value, req.Note, models.Now())
	})
	if errors.Is(err, models.ErrInsufficientBalance) || errors.Is(err, models.ErrZeroDelta) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		storeError(c, err, "Card not found", "Failed to adjust prepaid card")
		return
	}
	c.JSON(http.StatusOK, card)
}
