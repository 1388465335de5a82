package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/morganjb52/ffb/controller"
)

func oauthLinkHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := chi.URLParam(r, "platform")

		url, err := ctrl.OAuthStart(platform)
		if err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}

func oauthRedirectHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		code := params.Get("code")
		state := params.Get("state")

		if err := ctrl.OAuthExchange(r.Context(), state, code); err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		render.JSON(w, http.StatusOK, map[string]bool{"connected": true})
	}
}
