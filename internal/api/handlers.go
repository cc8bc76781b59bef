package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MJE43/arcade-engine-go/internal/autoplay"
	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON format: "+err.Error())
		return false
	}
	return true
}

// respond writes the arcade state after a command, or the command's error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StateResponse{State: s.arcade.State(), EngineVersion: EngineVersion})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GamesResponse{Games: s.arcade.Games(), EngineVersion: EngineVersion})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, nil)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.arcade.History()
	s.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Count: len(entries)})
}

func (s *Server) handleSetBet(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, BetResponse{Bet: s.arcade.SetBet(req.Amount)})
}

func (s *Server) handleSetGame(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Game == "" {
		s.errorHandler.HandleValidationError(w, r, "game", "game is required")
		return
	}
	g, err := engine.ParseGameType(req.Game)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.respond(w, r, s.arcade.SetActiveGame(g))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.arcade.Start())
}

func (s *Server) handleCashOut(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.arcade.CashOut())
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.arcade.Abandon()
	s.respond(w, r, nil)
}

func (s *Server) handleCloseResult(w http.ResponseWriter, r *http.Request) {
	s.arcade.CloseResult()
	s.respond(w, r, nil)
}

func (s *Server) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	s.arcade.PlayAgain()
	s.respond(w, r, nil)
}

func (s *Server) handleRefill(w http.ResponseWriter, r *http.Request) {
	s.arcade.Refill()
	s.respond(w, r, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.arcade.Reset()
	s.respond(w, r, nil)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Index == nil {
		s.errorHandler.HandleValidationError(w, r, "index", "index is required")
		return
	}
	s.respond(w, r, s.arcade.Select(*req.Index))
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.arcade.Hit())
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Symbol == nil {
		s.errorHandler.HandleValidationError(w, r, "symbol", "symbol is required")
		return
	}
	s.respond(w, r, s.arcade.Input(*req.Symbol))
}

func (s *Server) handleAutoCashOut(w http.ResponseWriter, r *http.Request) {
	var req AutoCashOutRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, s.arcade.SetAutoCashOut(req.Target))
}

func (s *Server) handleAutoplayState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.autoplay.Snapshot())
}

func (s *Server) handleAutoplayStart(w http.ResponseWriter, r *http.Request) {
	var req AutoplayRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Script == "" {
		s.errorHandler.HandleValidationError(w, r, "script", "script is required")
		return
	}
	if err := s.autoplay.Start(req.Script); err != nil {
		if errors.Is(err, autoplay.ErrRunning) {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		s.errorHandler.HandleValidationError(w, r, "script", err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.autoplay.Snapshot())
}

func (s *Server) handleAutoplayStop(w http.ResponseWriter, r *http.Request) {
	if err := s.autoplay.Stop(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.autoplay.Snapshot())
}
