package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/morganjb52/ffb/controller"
	"github.com/morganjb52/ffb/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func rootHandler(_ controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Text(w, http.StatusOK, "fantasy lineup aggregator")
	}
}

func connectHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := chi.URLParam(r, "platform")

		credentials := make(map[string]string)
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil && err.Error() != "EOF" {
				render.JSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("error parsing credentials: %v", err)})
				return
			}
		}

		result := ctrl.ConnectPlatform(r.Context(), platform, credentials)
		if !result.Success {
			render.JSON(w, http.StatusUnprocessableEntity, result)
			return
		}
		render.JSON(w, http.StatusOK, result)
	}
}

func disconnectHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := chi.URLParam(r, "platform")

		if err := ctrl.Disconnect(r.Context(), platform); err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		// 204 responses carry no body.
		w.WriteHeader(http.StatusNoContent)
	}
}

func listTeamsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, ctrl.ListTeams())
	}
}

func getTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		team, err := ctrl.GetTeam(teamID)
		if err != nil {
			if errors.Is(err, controller.ErrTeamNotFound) {
				render.JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			} else {
				render.JSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			}
			return
		}
		render.JSON(w, http.StatusOK, team)
	}
}

func getLineupHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		week, err := parseWeek(r)
		if err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		lineup, err := ctrl.GetTeamLineup(r.Context(), teamID, week)
		if err != nil {
			if errors.Is(err, controller.ErrTeamNotFound) {
				render.JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			} else {
				render.JSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			}
			return
		}
		render.JSON(w, http.StatusOK, lineup)
	}
}

func updateLineupHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		week, err := parseWeek(r)
		if err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		var partial map[model.Slot]model.Player
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("error parsing lineup changes: %v", err)})
			return
		}

		applied, err := ctrl.UpdateTeamLineup(r.Context(), teamID, week, partial)
		if err != nil {
			if errors.Is(err, controller.ErrTeamNotFound) {
				render.JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			} else {
				render.JSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			}
			return
		}
		render.JSON(w, http.StatusOK, map[string]bool{"applied": applied})
	}
}

func syncTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		week, err := parseWeek(r)
		if err != nil {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		// failed syncs are results too, always 200
		render.JSON(w, http.StatusOK, ctrl.SyncTeam(r.Context(), teamID, week))
	}
}

func parseWeek(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return 0, errors.New("the week query parameter is required")
	}
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("error parsing week %q: %w", raw, err)
	}
	if !model.ValidWeek(week) {
		return 0, fmt.Errorf("week %d is out of range", week)
	}
	return week, nil
}
