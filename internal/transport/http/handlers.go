package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"undercover/internal/app"
	"undercover/internal/domain"
)

// qrSize is the edge length in pixels of invite QR codes
const qrSize = 320

// Response is a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	InviteLink string `json:"inviteLink"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	app.RoomInfo
	CanJoin bool `json:"canJoin"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	app.Stats
	Connections int `json:"connections"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	code, err := s.hub.CreateRoom(r.Context())
	if err != nil {
		s.logger.Error("failed to create room", "error", err)
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	s.sendStatus(w, http.StatusCreated, &CreateRoomResponse{
		RoomCode:   code,
		InviteLink: s.inviteLink(r, code),
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code, ok := s.roomCode(w, r)
	if !ok {
		return
	}

	info, found := s.hub.RoomInfo(code)
	if !found {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	s.sendSuccess(w, &GetRoomResponse{
		RoomInfo: info,
		CanJoin:  info.Status == domain.StatusWaiting && info.Players < s.config.Game.MaxPlayers,
	})
}

// handleRoomQR handles GET /api/rooms/{roomCode}/qr
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	code, ok := s.roomCode(w, r)
	if !ok {
		return
	}

	if _, found := s.hub.RoomInfo(code); !found {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	png, err := qrcode.Encode(s.inviteLink(r, code), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr generation failed", "roomCode", code, "error", err)
		s.sendError(w, http.StatusInternalServerError, "QR_FAILED", "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// handleSaveSettings handles PUT /api/rooms/{roomCode}/settings. Stored
// settings apply when the room is next created, not to a live room.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	code, ok := s.roomCode(w, r)
	if !ok {
		return
	}

	var settings domain.Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&settings); err != nil {
		s.sendError(w, http.StatusBadRequest, domain.ErrorCode(domain.ErrInvalidPayload), "Invalid settings body")
		return
	}

	if err := s.store.SaveRoomSettings(r.Context(), code, settings); err != nil {
		if domain.IsValidation(err) {
			s.sendError(w, http.StatusBadRequest, domain.ErrorCode(err), err.Error())
			return
		}
		s.logger.Error("failed to save room settings", "roomCode", code, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
		return
	}

	s.sendSuccess(w, &settings)
}

// handleDeleteSettings handles DELETE /api/rooms/{roomCode}/settings. The
// room falls back to server defaults the next time it is created.
func (s *Server) handleDeleteSettings(w http.ResponseWriter, r *http.Request) {
	code, ok := s.roomCode(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRoomSettings(r.Context(), code); err != nil {
		s.logger.Error("failed to delete room settings", "roomCode", code, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete settings")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		Stats:       s.hub.Stats(),
		Connections: s.gateway.ConnectionCount(),
	})
}

// roomCode reads and normalizes the {roomCode} path variable, replying with
// 400 when it is malformed.
func (s *Server) roomCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code, err := app.NormalizeCode(mux.Vars(r)["roomCode"])
	if err != nil {
		s.sendError(w, http.StatusBadRequest, domain.ErrorCode(err), "Invalid room code")
		return "", false
	}
	return code, true
}

func (s *Server) inviteLink(r *http.Request, code string) string {
	return s.baseURL(r) + "/join/" + url.PathEscape(code)
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data any) {
	s.sendStatus(w, http.StatusOK, data)
}

// sendStatus sends a successful JSON response with the given status code
func (s *Server) sendStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
