package handlers

import (
	"net/http"

	"milk-backend/database"
	"milk-backend/dtos"
	"milk-backend/logging"
	"milk-backend/models"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	Store  database.Store
	Events realtime.Publisher
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	reservations, err := h.Store.ListReservations(c.Request.Context(), c.Query("milkId"))
	if err != nil {
		storeError(c, err, "Not found", "Failed to fetch reservations")
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservation, err := h.Store.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Reservation not found", "Failed to fetch reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req dtos.CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}
	guests := int(req.Guests.Value)
	if !req.Guests.Truthy() || guests <= 0 {
		badRequest(c, "guests is required")
		return
	}

	reservation := models.Reservation{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		Guests:    guests,
		Room:      req.Room,
		Notes:     req.Notes,
		Email:     req.Email,
		MilkID:    req.MilkID,
		Source:    models.ReservationSource(req.Source, req.MilkID),
		CreatedAt: models.Now(),
	}
	if err := h.Store.CreateReservation(c.Request.Context(), &reservation); err != nil {
		storeError(c, err, "Reservation not found", "Failed to create reservation")
		return
	}

	logging.FromContext(c.Request.Context()).Info("Reservation created",
		"reservation_id", reservation.ID, "date", reservation.Date, "time", reservation.Time, "source", reservation.Source)
	publish(c, h.Events, realtime.EventReservationNew, reservation)
	utils.SendReservationConfirmation(reservation.Email, reservation.Name, reservation.Date, reservation.Time, reservation.Room, reservation.Guests)

	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	var req dtos.UpdateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	reservation, err := h.Store.UpdateReservation(c.Request.Context(), c.Param("id"), func(r *models.Reservation) error {
		setIfPresent(&r.Name, req.Name)
		setIfPresent(&r.Phone, req.Phone)
		setIfPresent(&r.Date, req.Date)
		setIfPresent(&r.Time, req.Time)
		setIfPresent(&r.Room, req.Room)
		setIfPresent(&r.Notes, req.Notes)
		setIfPresent(&r.Email, req.Email)
		setIfPresent(&r.MilkID, req.MilkID)
		setIfPresent(&r.Source, req.Source)
		if req.Guests.Valid {
			r.Guests = int(req.Guests.Value)
		}
		now := models.Now()
		r.UpdatedAt = &now
		return nil
	})
	if err != nil {
		storeError(c, err, "Reservation not found", "Failed to update reservation")
		return
	}

	publish(c, h.Events, realtime.EventReservationsChanged, gin.H{"id": reservation.ID})
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.DeleteReservation(c.Request.Context(), id); err != nil {
		storeError(c, err, "Reservation not found", "Failed to delete reservation")
		return
	}

	publish(c, h.Events, realtime.EventReservationsChanged, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
