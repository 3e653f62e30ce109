package api

import (
	"log/slog"
	"net/http"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/auth"
	"github.com/chrisdamba/boatride/internal/ports"
	"github.com/chrisdamba/boatride/internal/utils"
)

func RegisterDriverHandler(service ports.DriverService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.DriverRegistration
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}

		ans, err := service.Register(r.Context(), &req)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusCreated, ans)
	}
}

func LoginDriverHandler(service ports.DriverService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}

		ans, err := service.Login(r.Context(), &req)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func CurrentDriverHandler(service ports.DriverService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			renderError(log, r, w, models.ErrUnauthorized)
			return
		}

		ans, err := service.GetDriver(r.Context(), principal.ID)
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func ApproveDriverHandler(service ports.DriverService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ans, err := service.Approve(r.Context(), r.PathValue("id"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}

func RejectDriverHandler(service ports.DriverService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ans, err := service.Reject(r.Context(), r.PathValue("id"))
		if err != nil {
			renderError(log, r, w, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, ans)
	}
}
