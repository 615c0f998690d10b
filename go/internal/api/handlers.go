package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
)

type deltaRequest struct {
	Delta int `json:"delta"`
}

type msRequest struct {
	DeltaMs int64 `json:"delta_ms"`
	Ms      int64 `json:"ms"`
}

type sideDeltaRequest struct {
	Side  models.Side `json:"side"`
	Delta int         `json:"delta"`
}

type linkRequest struct {
	// Linked toggles the link when omitted
	Linked *bool `json:"linked"`
}

type lengthRequest struct {
	Minutes int `json:"minutes"`
}

type textRequest struct {
	Text string `json:"text"`
}

type presetRequest struct {
	Name string `json:"name"`
}

type freeThrowRequest struct {
	Side     models.Side `json:"side"`
	Attempts int         `json:"attempts"`
	Made     int         `json:"made"`
}

type foulRequest struct {
	PlayerID string              `json:"player_id"`
	Category models.FoulCategory `json:"category"`
	Delta    int                 `json:"delta"`
}

type foulEventRequest struct {
	PlayerID string              `json:"player_id"`
	Kind     match.FoulEventKind `json:"kind"`
}

type onCourtRequest struct {
	OnCourt bool `json:"on_court"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// GetState returns the current snapshot
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// GetPresets lists the rule presets
func (h *Handler) GetPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Presets())
}

// GetBuzzer serves the buzzer clip
func (h *Handler) GetBuzzer(w http.ResponseWriter, r *http.Request) {
	if len(h.buzzer) == 0 {
		respondError(w, http.StatusNotFound, "buzzer disabled", nil)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.buzzer)
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.StartGameClock(r.Context()))
}

func (h *Handler) PauseGame(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.PauseGameClock(r.Context()))
}

func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.ResetGameClock(r.Context()))
}

func (h *Handler) AdjustGame(w http.ResponseWriter, r *http.Request) {
	var req msRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AdjustGameClock(r.Context(), req.DeltaMs))
}

func (h *Handler) SetGameLength(w http.ResponseWriter, r *http.Request) {
	var req lengthRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.SetGameLength(r.Context(), req.Minutes))
}

func (h *Handler) SetLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if req.Linked == nil {
		respondSnapshot(w, r)(h.engine.ToggleLink(r.Context()))
		return
	}
	respondSnapshot(w, r)(h.engine.SetLinked(r.Context(), *req.Linked))
}

func (h *Handler) StartShot(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.StartShotClock(r.Context()))
}

func (h *Handler) PauseShot(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.PauseShotClock(r.Context()))
}

// ResetShot resets to "ms", or to a full 24 seconds when the body is empty
func (h *Handler) ResetShot(w http.ResponseWriter, r *http.Request) {
	req := msRequest{Ms: models.ShotClockFullMs}
	if !decodeOptional(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.ResetShotClock(r.Context(), req.Ms))
}

func (h *Handler) AdjustShot(w http.ResponseWriter, r *http.Request) {
	var req msRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AdjustShotClock(r.Context(), req.DeltaMs))
}

func (h *Handler) SwapPossession(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.SwapPossession(r.Context()))
}

func (h *Handler) ChangePossession(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.ChangePossession(r.Context()))
}

func (h *Handler) SetPossession(w http.ResponseWriter, r *http.Request) {
	var req sideDeltaRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.SetPossession(r.Context(), req.Side))
}

func (h *Handler) Violation(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.ShotClockViolation(r.Context()))
}

func (h *Handler) AddScore(w http.ResponseWriter, r *http.Request) {
	var req sideDeltaRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AddScore(r.Context(), req.Side, req.Delta))
}

func (h *Handler) AddTeamFouls(w http.ResponseWriter, r *http.Request) {
	var req sideDeltaRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AddTeamFouls(r.Context(), req.Side, req.Delta))
}

func (h *Handler) ResetTeamFouls(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.ResetTeamFouls(r.Context()))
}

func (h *Handler) AddTimeouts(w http.ResponseWriter, r *http.Request) {
	var req sideDeltaRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AddTimeouts(r.Context(), req.Side, req.Delta))
}

func (h *Handler) ChangePeriod(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.ChangePeriod(r.Context(), req.Delta))
}

func (h *Handler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var req models.RuleConfig
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.UpdateRules(r.Context(), req))
}

func (h *Handler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.ApplyPreset(r.Context(), req.Name))
}

func (h *Handler) SetReferees(w http.ResponseWriter, r *http.Request) {
	var req models.Referees
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.SetReferees(r.Context(), req))
}

func (h *Handler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.SetTitle(r.Context(), req.Text))
}

func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.SetView(r.Context(), req.Text))
}

func (h *Handler) AppendNote(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.AppendNote(r.Context(), req.Text))
}

func (h *Handler) RecordFreeThrows(w http.ResponseWriter, r *http.Request) {
	var req freeThrowRequest
	if !decode(w, r, &req) {
		return
	}
	respondSnapshot(w, r)(h.engine.RecordFreeThrows(r.Context(), req.Side, req.Attempts, req.Made))
}

func (h *Handler) RecordFoul(w http.ResponseWriter, r *http.Request) {
	var req foulRequest
	if !decode(w, r, &req) {
		return
	}
	if !validPlayerID(w, req.PlayerID) {
		return
	}
	out, err := h.engine.RecordFoul(r.Context(), req.PlayerID, req.Category, req.Delta)
	respondResult(w, r, out, err)
}

func (h *Handler) RecordFoulEvent(w http.ResponseWriter, r *http.Request) {
	var req foulEventRequest
	if !decode(w, r, &req) {
		return
	}
	if !validPlayerID(w, req.PlayerID) {
		return
	}
	out, err := h.engine.RecordFoulEvent(r.Context(), req.PlayerID, req.Kind)
	respondResult(w, r, out, err)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.engine.Players(r.Context())
	respondResult(w, r, players, err)
}

func (h *Handler) UpsertPlayer(w http.ResponseWriter, r *http.Request) {
	var req roster.PlayerIdentity
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.engine.UpsertPlayer(r.Context(), req)
	respondResult(w, r, rec, err)
}

func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	var req []roster.PlayerIdentity
	if !decode(w, r, &req) {
		return
	}
	recs, err := h.engine.ImportPlayers(r.Context(), req)
	respondResult(w, r, recs, err)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	rec, err := h.engine.Player(r.Context(), id)
	respondResult(w, r, rec, err)
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	if err := h.engine.RemovePlayer(r.Context(), id); err != nil {
		respondEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetOnCourt(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var req onCourtRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.engine.SetOnCourt(r.Context(), id, req.OnCourt)
	respondResult(w, r, rec, err)
}

func (h *Handler) AddPlayerPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var req deltaRequest
	if !decode(w, r, &req) {
		return
	}
	rec, snap, err := h.engine.AddPlayerPoints(r.Context(), id, req.Delta)
	respondResult(w, r, map[string]any{"player": rec, "snapshot": snap}, err)
}

func (h *Handler) SaveMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Save(r.Context()); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) ClearMatch(w http.ResponseWriter, r *http.Request) {
	respondSnapshot(w, r)(h.engine.ClearMatch(r.Context()))
}

// playerID reads the player id from the {team}/{number} route
func playerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := models.PlayerID(models.Side(chi.URLParam(r, "team")), chi.URLParam(r, "number"))
	return id, validPlayerID(w, id)
}

func validPlayerID(w http.ResponseWriter, id string) bool {
	if _, _, err := models.ParsePlayerID(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid player id", err)
		return false
	}
	return true
}
