package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/google/uuid"
)

const maxPageLimit = 100

func CreateBookingHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bookingRequest models.BookingRequest
		if err := utils.JsonDecodeBody(r, &bookingRequest); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}

		ans, err := service.CreateBooking(r.Context(), &bookingRequest)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusCreated, ans)
	}
}

func ListBookingsHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.GetBookingsRequest{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 || limit > maxPageLimit {
				ae := utils.NewBadRequest("limit must be between 1 and 100")
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}
			req.Limit = limit
		}
		if raw := r.URL.Query().Get("customer_id"); raw != "" {
			customerID, err := uuid.Parse(raw)
			if err != nil {
				ae := utils.NewBadRequest("customer_id must be a uuid")
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}
			req.CustomerID = &customerID
		}

		ans, err := service.AllBookings(r.Context(), req)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func BookingStatsHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ans, err := service.Stats(r.Context())
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func GetBookingHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ans, err := service.GetBooking(r.Context(), r.PathValue("id"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func UpdateBookingHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.BookingPatch
		if err := utils.JsonDecodeBody(r, &patch); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}

		ans, err := service.UpdateBooking(r.Context(), r.PathValue("id"), &patch)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func CancelBookingHandler(service ports.BookingService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ans, err := service.CancelBooking(r.Context(), r.PathValue("id"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

// renderError maps err to a status code. Server errors are logged and
// answered with a generic message.
func renderError(log *slog.Logger, r *http.Request, w http.ResponseWriter, err error) {
	ae := getApiError(err)
	if ae.StatusCode == http.StatusInternalServerError {
		log.Error("request failed",
			slog.String("action", "request_failed"),
			slog.String("request_id", utils.RequestMetaFrom(r.Context()).RequestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	utils.RenderResponse(r, w, ae.StatusCode, ae)
}

func getApiError(err error) utils.ApiError {
	ae := utils.ApiError{Msg: err.Error()}
	switch {
	case errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrDriverNotFound),
		errors.Is(err, models.ErrBoatNotFound),
		errors.Is(err, models.ErrZoneNotFound),
		errors.Is(err, models.ErrCouponNotFound):
		ae.StatusCode = http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrInvalidCredentials):
		ae.StatusCode = http.StatusUnauthorized
	case errors.Is(err, models.ErrDriverNotAuthorized),
		errors.Is(err, models.ErrNotAssignedToDriver),
		errors.Is(err, models.ErrForbidden):
		ae.StatusCode = http.StatusForbidden
	case errors.Is(err, models.ErrBookingNotAvailable),
		errors.Is(err, models.ErrDriverAlreadyOnDuty),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrCouponExhausted),
		errors.Is(err, models.ErrMobileTaken):
		ae.StatusCode = http.StatusConflict
	case errors.Is(err, models.ErrInvalidUUID),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidMode),
		errors.Is(err, models.ErrNoBoatRegistered),
		errors.Is(err, models.ErrZoneMismatch),
		errors.Is(err, models.ErrBoatTypeMismatch),
		errors.Is(err, models.ErrCouponNotApplicable):
		ae.StatusCode = http.StatusBadRequest
	default:
		ae.StatusCode = http.StatusInternalServerError
		ae.Msg = "internal server error"
	}
	return ae
}
