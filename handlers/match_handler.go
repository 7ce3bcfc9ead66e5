package handlers

import (
	"errors"
	"net/http"

	"github.com/Ob91190/hud-manager/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	advanceService services.AdvanceService
}

func NewMatchHandler(ms services.MatchService, as services.AdvanceService) *MatchHandler {
	return &MatchHandler{
		matchService:   ms,
		advanceService: as,
	}
}

// GetByIDHandler handles GET /matches/{matchID}.
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetCurrentHandler handles POST /matches/{matchID}/current.
func (h *MatchHandler) SetCurrentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SetCurrent(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler handles POST /matches/{matchID}/advance: propagate the
// winner of a decided match into its downstream matchup. An undecided
// series is answered with 202, which means "nothing to do yet", not an
// error.
func (h *MatchHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.advanceService.CreateNextMatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMatchNotDecided) {
			if err := writeJSON(w, http.StatusAccepted, jsonResponse{"status": "not_decided"}, nil); err != nil {
				serverErrorResponse(w, r, err)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
