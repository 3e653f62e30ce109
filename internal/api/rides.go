package api

import (
	"log/slog"
	"net/http"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/auth"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/utils"
)

func AvailableBookingsHandler(service ports.RideService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			renderError(log, r, w, models.ErrUnauthorized)
			return
		}

		q := r.URL.Query()
		ans, err := service.ListAvailableForDriver(r.Context(), principal.ID, q.Get("mode"), q.Get("tripType"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func AcceptBookingHandler(service ports.RideService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			renderError(log, r, w, models.ErrUnauthorized)
			return
		}

		ans, err := service.Accept(r.Context(), principal.ID, r.PathValue("bookingId"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func FinishBookingHandler(service ports.RideService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			renderError(log, r, w, models.ErrUnauthorized)
			return
		}

		ans, err := service.Finish(r.Context(), principal.ID, r.PathValue("bookingId"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}
