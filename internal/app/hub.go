package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"undercover/internal/config"
	"undercover/internal/domain"
	"undercover/internal/timer"
	"undercover/internal/words"
)

const (
	// sweepInterval is how often idle rooms are looked for
	sweepInterval = 30 * time.Second

	// closeTimeout bounds how long Close waits for each room to stop
	closeTimeout = 2 * time.Second

	maxCodeAttempts = 10
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Hub is the room registry. It maps room codes to running rooms and
// connection handles to the room and player they joined as.
type Hub struct {
	rooms map[string]*Room
	mu    sync.RWMutex

	handles   map[string]binding
	handlesMu sync.Mutex

	cfg      config.GameConfig
	defaults domain.Settings
	rule     domain.CatchRule

	gateway  Gateway
	settings SettingsSource
	loadWait time.Duration
	sched    timer.Scheduler
	words    words.Provider
	pick     func(n int) int
	now      func() time.Time

	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
}

type binding struct {
	code   string
	userID string
}

// Option configures a Hub
type Option func(*Hub)

// WithSettingsSource sets where new rooms load their settings from. timeout
// bounds each lookup; rooms fall back to defaults on error.
func WithSettingsSource(src SettingsSource, timeout time.Duration) Option {
	return func(h *Hub) {
		h.settings = src
		h.loadWait = timeout
	}
}

// WithScheduler replaces the phase timer scheduler
func WithScheduler(s timer.Scheduler) Option {
	return func(h *Hub) { h.sched = s }
}

// WithWordProvider replaces the word pair source
func WithWordProvider(p words.Provider) Option {
	return func(h *Hub) { h.words = p }
}

// WithPicker replaces the imposter picker. pick(n) must return a value in [0,n).
func WithPicker(pick func(n int) int) Option {
	return func(h *Hub) { h.pick = pick }
}

// WithClock replaces the wall clock used for deadlines and idle tracking
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a new hub and starts its idle sweeper
func NewHub(cfg config.GameConfig, gateway Gateway, logger *slog.Logger, opts ...Option) (*Hub, error) {
	rule, err := domain.ParseCatchRule(cfg.CatchRule)
	if err != nil {
		return nil, err
	}

	defaults := domain.Settings{
		Difficulty:          domain.Difficulty(cfg.DefaultDifficulty),
		TotalRounds:         cfg.DefaultTotalRounds,
		ResponseTimeSeconds: int(cfg.DefaultResponseTime / time.Second),
		VotingTimeSeconds:   int(cfg.DefaultVotingTime / time.Second),
	}
	if err := defaults.Validate(); err != nil {
		logger.Warn("configured default settings are invalid, using built-in defaults", "error", err)
		defaults = domain.DefaultSettings()
	}

	h := &Hub{
		rooms:    make(map[string]*Room),
		handles:  make(map[string]binding),
		cfg:      cfg,
		defaults: defaults,
		rule:     rule,
		gateway:  gateway,
		loadWait: 2 * time.Second,
		sched:    timer.System{},
		words:    words.Default(),
		pick:     mrand.Intn,
		now:      time.Now,
		logger:   logger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	go h.cleanupLoop()

	return h, nil
}

// CreateRoom reserves a fresh room code and starts an empty room for it.
// The room is swept like any other if nobody joins.
func (h *Hub) CreateRoom(ctx context.Context) (string, error) {
	h.mu.Lock()
	var code string
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		candidate := h.generateRoomCode()
		if _, exists := h.rooms[candidate]; !exists {
			code = candidate
			break
		}
	}
	h.mu.Unlock()

	if code == "" {
		return "", fmt.Errorf("failed to generate unique room code")
	}

	if _, err := h.getOrCreate(ctx, code); err != nil {
		return "", err
	}
	return code, nil
}

// RoomInfo returns the last published snapshot of a room
func (h *Hub) RoomInfo(code string) (RoomInfo, bool) {
	code, err := NormalizeCode(code)
	if err != nil {
		return RoomInfo{}, false
	}

	h.mu.RLock()
	room, ok := h.rooms[code]
	h.mu.RUnlock()
	if !ok {
		return RoomInfo{}, false
	}
	return room.Info(), true
}

// Stats summarizes every active room
type Stats struct {
	Rooms     int `json:"rooms"`
	Players   int `json:"players"`
	Connected int `json:"connected"`
	Playing   int `json:"playing"`
}

// Stats returns counts across all rooms
func (h *Hub) Stats() Stats {
	var s Stats
	for _, room := range h.snapshot() {
		info := room.Info()
		s.Rooms++
		s.Players += info.Players
		s.Connected += info.Connected
		if info.Status == domain.StatusPlaying {
			s.Playing++
		}
	}
	return s
}

// Close shuts down the hub and all rooms
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		for _, room := range h.snapshot() {
			room.post(func() { room.close("server shutting down") })
			select {
			case <-room.done:
			case <-time.After(closeTimeout):
				h.logger.Warn("room did not stop in time", "roomCode", room.code)
			}
		}
	})
}

// NormalizeCode upper-cases a room code and checks its shape
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 4 || len(code) > 12 {
		return "", domain.ErrInvalidRoomCode
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", domain.ErrInvalidRoomCode
		}
	}
	return code, nil
}

// getOrCreate returns the running room for code, creating it with loaded
// settings when absent. Settings are loaded outside the registry lock.
func (h *Hub) getOrCreate(ctx context.Context, code string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[code]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	settings := h.loadSettings(ctx, code)

	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return nil, domain.ErrRoomNotFound
	default:
	}

	if room, ok := h.rooms[code]; ok {
		return room, nil
	}

	room = newRoom(h, code, settings)
	h.rooms[code] = room
	go room.run()

	h.logger.Info("room created", "roomCode", code, "difficulty", settings.Difficulty, "totalRounds", settings.TotalRounds)

	return room, nil
}

func (h *Hub) loadSettings(ctx context.Context, code string) domain.Settings {
	if h.settings == nil {
		return h.defaults.Clone()
	}

	ctx, cancel := context.WithTimeout(ctx, h.loadWait)
	defer cancel()

	stored, err := h.settings.RoomSettings(ctx, code)
	if err != nil {
		h.logger.Warn("room settings unavailable, using defaults", "roomCode", code, "error", err)
		return h.defaults.Clone()
	}
	if stored == nil {
		return h.defaults.Clone()
	}
	if err := stored.Validate(); err != nil {
		h.logger.Warn("stored room settings are invalid, using defaults", "roomCode", code, "error", err)
		return h.defaults.Clone()
	}
	return stored.Clone()
}

// dispatch runs fn on the room's goroutine
func (h *Hub) dispatch(code string, fn func(r *Room)) error {
	h.mu.RLock()
	room, ok := h.rooms[code]
	h.mu.RUnlock()
	if !ok {
		return domain.ErrRoomNotFound
	}
	if !room.post(func() { fn(room) }) {
		return domain.ErrRoomNotFound
	}
	return nil
}

// destroy removes room from the registry. A newer room under the same code
// is left alone.
func (h *Hub) destroy(code string, room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.rooms[code]; ok && current == room {
		delete(h.rooms, code)
		h.logger.Info("room destroyed", "roomCode", code)
	}
}

func (h *Hub) snapshot() []*Room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// bind records that handle joined code as userID and returns the previous
// binding of handle, if any.
func (h *Hub) bind(handle, code, userID string) (binding, bool) {
	h.handlesMu.Lock()
	defer h.handlesMu.Unlock()

	prev, ok := h.handles[handle]
	h.handles[handle] = binding{code: code, userID: userID}
	return prev, ok
}

// unbind removes handle if it is still bound to code
func (h *Hub) unbind(handle, code string) {
	if handle == "" {
		return
	}
	h.handlesMu.Lock()
	defer h.handlesMu.Unlock()

	if b, ok := h.handles[handle]; ok && b.code == code {
		delete(h.handles, handle)
	}
}

func (h *Hub) lookup(handle string) (binding, bool) {
	h.handlesMu.Lock()
	defer h.handlesMu.Unlock()

	b, ok := h.handles[handle]
	return b, ok
}

// generateRoomCode generates a random room code
func (h *Hub) generateRoomCode() string {
	length := h.cfg.RoomCodeLength
	if length <= 0 {
		length = 6
	}

	b := make([]byte, length)
	rand.Read(b)

	code := make([]byte, length)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically closes idle rooms
func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.sweepIdleRooms()
		}
	}
}

// sweepIdleRooms closes rooms in which nobody has been connected for longer
// than the reconnect grace period.
func (h *Hub) sweepIdleRooms() {
	now := h.now()
	for _, room := range h.snapshot() {
		info := room.Info()
		if info.Connected > 0 || now.Sub(info.IdleSince) <= h.cfg.ReconnectGracePeriod {
			continue
		}
		room.post(func() {
			if room.idleFor(h.now()) > h.cfg.ReconnectGracePeriod {
				h.logger.Info("idle room cleaned up", "roomCode", room.code)
				room.close("room was idle")
			}
		})
	}
}
