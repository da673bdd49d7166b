package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wikiracer/wikirace/internal/database"
	"github.com/wikiracer/wikirace/internal/model"
	"github.com/wikiracer/wikirace/internal/sixdegrees"
)

// handleGameStart creates a new in-progress game and returns its ID.
// The pairing is reported later through the update route, so the
// client can show a game ID while the selection search runs.
func (s *Server) handleGameStart(w http.ResponseWriter, r *http.Request, userID string) {
	s.sweepStale(r)

	game, err := s.db.CreateGame(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to create game", "error", err, "user", userID)
		s.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	s.hub.Broadcast(Event{Type: EventGameStarted, Data: map[string]string{
		"gameId": game.ID,
		"userId": userID,
	}})

	s.writeJSON(w, http.StatusCreated, map[string]string{"gameId": game.ID})
}

type updateRequest struct {
	GameID    string `json:"gameId"`
	StartPage string `json:"startPage"`
	EndPage   string `json:"endPage"`
}

// handleGameUpdate records the chosen page pairing on a game.
func (s *Server) handleGameUpdate(w http.ResponseWriter, r *http.Request, userID string) {
	var req updateRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.GameID == "" || req.StartPage == "" || req.EndPage == "" {
		s.writeError(w, http.StatusBadRequest, "gameId, startPage and endPage are required")
		return
	}

	err := s.db.UpdateGamePages(r.Context(), req.GameID, userID, req.StartPage, req.EndPage)
	if err != nil {
		s.writeGameError(w, err, "failed to update game")
		return
	}

	s.hub.Broadcast(Event{Type: EventGameUpdated, Data: map[string]string{
		"gameId":    req.GameID,
		"startPage": req.StartPage,
		"endPage":   req.EndPage,
	}})

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type finishRequest struct {
	GameID    string `json:"gameId"`
	StartPage string `json:"startPage"`
	EndPage   string `json:"endPage"`
	Clicks    int    `json:"clicks"`
}

// handleGameFinish finalizes a game and returns the updated aggregates.
func (s *Server) handleGameFinish(w http.ResponseWriter, r *http.Request, userID string) {
	var req finishRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.GameID == "" || req.StartPage == "" || req.EndPage == "" {
		s.writeError(w, http.StatusBadRequest, "gameId, startPage and endPage are required")
		return
	}
	if req.Clicks < 0 {
		s.writeError(w, http.StatusBadRequest, "clicks must not be negative")
		return
	}

	summary, err := s.db.FinishGame(r.Context(), req.GameID, userID, req.StartPage, req.EndPage, req.Clicks)
	if err != nil {
		s.writeGameError(w, err, "failed to finish game")
		return
	}

	s.sweepStale(r)

	s.hub.Broadcast(Event{Type: EventGameFinished, Data: map[string]any{
		"gameId":          req.GameID,
		"startPage":       req.StartPage,
		"endPage":         req.EndPage,
		"clicks":          req.Clicks,
		"durationSeconds": summary.DurationSeconds,
	}})

	s.writeJSON(w, http.StatusOK, summary)
}

type abandonRequest struct {
	GameID string `json:"gameId"`
}

// handleGameAbandon marks a game abandoned.
func (s *Server) handleGameAbandon(w http.ResponseWriter, r *http.Request, userID string) {
	var req abandonRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.GameID == "" {
		s.writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	if err := s.db.AbandonGame(r.Context(), req.GameID, userID); err != nil {
		s.writeGameError(w, err, "failed to abandon game")
		return
	}

	s.hub.Broadcast(Event{Type: EventGameAbandon, Data: map[string]string{
		"gameId": req.GameID,
	}})

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// statsResponse is the public shape of a player's aggregates.
type statsResponse struct {
	GamesPlayed            int `json:"gamesPlayed"`
	FastestDurationSeconds int `json:"fastestDurationSeconds"`
	AverageDurationSeconds int `json:"averageDurationSeconds"`
}

// handleStats returns the player's aggregate statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, err := s.db.UserStats(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to read stats", "error", err, "user", userID)
		s.writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		GamesPlayed:            stats.GamesPlayed,
		FastestDurationSeconds: stats.FastestDurationSeconds,
		AverageDurationSeconds: stats.AverageDurationSeconds(),
	})
}

// handleRaceNew runs the pairing selection and returns the start page
// with its content, the end page, and the solver's path.
func (s *Server) handleRaceNew(w http.ResponseWriter, r *http.Request, userID string) {
	result, err := s.selector.Choose(r.Context())
	if err != nil {
		if errors.Is(err, sixdegrees.ErrExhausted) {
			s.writeError(w, http.StatusServiceUnavailable, "no solvable pairing found")
			return
		}
		s.logger.Error("pairing selection failed", "error", err, "user", userID)
		s.writeError(w, http.StatusBadGateway, "pairing selection failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// pageResponse carries sanitized article content for one move.
type pageResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// handlePage returns sanitized content for the requested article. The
// initial response may carry unenhanced images; the enhanced version
// is announced on the live feed once ready, and later fetches of the
// same title serve it from cache.
//
// An optional gameId query parameter counts the move against that
// game. Counting is bookkeeping: its failure is logged, never fatal,
// so navigation keeps working even when the game row is gone.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request, userID string) {
	title := model.NormalizeTitle(mux.Vars(r)["title"])
	if title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	if gameID := r.URL.Query().Get("gameId"); gameID != "" {
		if err := s.db.IncrementClicks(r.Context(), gameID, userID); err != nil {
			s.logger.Debug("failed to count move", "error", err, "game", gameID)
		}
	}

	content, err := s.wiki.PageContentProgressive(r.Context(), title, func(string) {
		s.hub.Broadcast(Event{Type: EventPageEnhanced, Data: map[string]string{
			"title": title,
		}})
	})
	if err != nil {
		s.logger.Error("failed to fetch page", "error", err, "title", title)
		s.writeError(w, http.StatusBadGateway, "failed to fetch page content")
		return
	}

	s.writeJSON(w, http.StatusOK, pageResponse{Title: title, Content: content})
}

// writeGameError maps storage sentinels onto HTTP statuses.
func (s *Server) writeGameError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, database.ErrGameNotFound):
		s.writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, database.ErrGameFinished):
		s.writeError(w, http.StatusConflict, "game already finished")
	default:
		s.logger.Error(fallback, "error", err)
		s.writeError(w, http.StatusInternalServerError, fallback)
	}
}

// sweepStale runs the staleness cleanup opportunistically. Failures
// are logged and ignored; the next request tries again.
func (s *Server) sweepStale(r *http.Request) {
	abandoned, deleted, err := s.db.CleanupOldGames(r.Context(), time.Now())
	if err != nil {
		s.logger.Warn("stale-game cleanup failed", "error", err)
		return
	}
	if abandoned > 0 || deleted > 0 {
		s.logger.Debug("swept stale games", "abandoned", abandoned, "deleted", deleted)
	}
}
