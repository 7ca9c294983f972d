package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kshaw/monthgrid/internal/field"
	"github.com/kshaw/monthgrid/internal/store"
)

// maxBodyBytes caps mutation request bodies.
const maxBodyBytes = 1 << 20

// saveResponse is the wire shape for mutation results. The status field is
// "success" on persisted writes and "error" otherwise; callers must inspect
// it because rejected writes still arrive as well-formed JSON.
type saveResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) respondError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, saveResponse{Status: "error", Error: msg})
}

// decodeBody decodes a JSON mutation body into v, rejecting oversized and
// malformed payloads.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// ensureMonth guarantees the (year, month) rows exist before a field write.
func (s *Server) ensureMonth(r *http.Request, year, month int) error {
	_, err := s.store.GetOrCreateMonth(r.Context(), year, month)
	return err
}

func (s *Server) handleSaveOneLiner(w http.ResponseWriter, r *http.Request) {
	var p field.OneLinerPayload
	if !s.decodeBody(w, r, &p) {
		return
	}
	key := field.Key{Year: p.Year, Month: p.Month, Day: p.Day}
	if err := key.Validate(field.KindOneLiner); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureMonth(r, p.Year, p.Month); err != nil {
		s.logger.Printf("save-oneliner %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := s.store.SaveOneLiner(r.Context(), p.Year, p.Month, p.Day, p.Text); err != nil {
		s.logger.Printf("save-oneliner %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	s.broadcastFieldSaved(FieldSavedData{
		Field: field.KindOneLiner.String(),
		Year:  p.Year, Month: p.Month, Day: p.Day,
	})
	writeJSON(w, http.StatusOK, saveResponse{Status: "success"})
}

func (s *Server) handleSaveHabit(w http.ResponseWriter, r *http.Request) {
	var p field.HabitCheckPayload
	if !s.decodeBody(w, r, &p) {
		return
	}
	key := field.Key{Year: p.Year, Month: p.Month, Day: p.Day, Habit: p.HabitNumber}
	if err := key.Validate(field.KindHabitCheck); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureMonth(r, p.Year, p.Month); err != nil {
		s.logger.Printf("save-habit %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := s.store.SaveHabitCheck(r.Context(), p.Year, p.Month, p.Day, p.HabitNumber, p.Checked); err != nil {
		s.logger.Printf("save-habit %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	s.broadcastFieldSaved(FieldSavedData{
		Field: field.KindHabitCheck.String(),
		Year:  p.Year, Month: p.Month, Day: p.Day, Habit: p.HabitNumber,
	})
	writeJSON(w, http.StatusOK, saveResponse{Status: "success"})
}

func (s *Server) handleUpdateHabitName(w http.ResponseWriter, r *http.Request) {
	var p field.HabitLabelPayload
	if !s.decodeBody(w, r, &p) {
		return
	}
	key := field.Key{Year: p.Year, Month: p.Month, Habit: p.HabitNumber}
	if err := key.Validate(field.KindHabitLabel); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := p.Name
	if name == "" {
		name = field.DefaultLabel(p.HabitNumber)
	}
	if err := s.ensureMonth(r, p.Year, p.Month); err != nil {
		s.logger.Printf("update-habit-name %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := s.store.UpdateHabitName(r.Context(), p.Year, p.Month, p.HabitNumber, name); err != nil {
		s.logger.Printf("update-habit-name %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	s.broadcastFieldSaved(FieldSavedData{
		Field: field.KindHabitLabel.String(),
		Year:  p.Year, Month: p.Month, Habit: p.HabitNumber,
	})
	writeJSON(w, http.StatusOK, saveResponse{Status: "success"})
}

func (s *Server) handleSaveBestDay(w http.ResponseWriter, r *http.Request) {
	var p field.BestDayPayload
	if !s.decodeBody(w, r, &p) {
		return
	}
	key := field.Key{Year: p.Year, Month: p.Month}
	if err := key.Validate(field.KindBestDay); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.BestDay < 0 || p.BestDay > 31 {
		s.respondError(w, http.StatusBadRequest, "best_day must be between 0 and 31")
		return
	}
	if err := s.ensureMonth(r, p.Year, p.Month); err != nil {
		s.logger.Printf("save-best-day %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := s.store.SaveBestDay(r.Context(), p.Year, p.Month, p.BestDay); err != nil {
		s.logger.Printf("save-best-day %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	s.broadcastFieldSaved(FieldSavedData{
		Field: field.KindBestDay.String(),
		Year:  p.Year, Month: p.Month, Day: p.BestDay,
	})
	writeJSON(w, http.StatusOK, saveResponse{Status: "success"})
}

func (s *Server) handleSaveJournal(w http.ResponseWriter, r *http.Request) {
	var p field.JournalPayload
	if !s.decodeBody(w, r, &p) {
		return
	}
	key := field.Key{Year: p.Year, Month: p.Month, Day: p.Day}
	if err := key.Validate(field.KindJournal); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureMonth(r, p.Year, p.Month); err != nil {
		s.logger.Printf("save-journal %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	words, err := s.store.SaveJournal(r.Context(), p.Year, p.Month, p.Day, p.Text)
	if err != nil {
		s.logger.Printf("save-journal %s: %v", key, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	s.broadcastFieldSaved(FieldSavedData{
		Field: field.KindJournal.String(),
		Year:  p.Year, Month: p.Month, Day: p.Day,
		WordCount: words,
	})
	writeJSON(w, http.StatusOK, saveResponse{Status: "success", WordCount: words})
}

// monthResponse augments the stored month data with navigation targets.
type monthResponse struct {
	store.MonthData
	Prev monthRef `json:"prev"`
	Next monthRef `json:"next"`
}

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// handleMonth returns the full state of one month, creating and seeding it
// on first access. Missing query parameters default to the current month.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = n
	}
	if year < 1 || month < 1 || month > 12 {
		s.respondError(w, http.StatusBadRequest, "year and month out of range")
		return
	}

	data, err := s.store.MonthData(r.Context(), year, month)
	if err != nil {
		s.logger.Printf("month %04d-%02d: %v", year, month, err)
		s.respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	py, pm := field.PrevMonth(year, month)
	ny, nm := field.NextMonth(year, month)
	writeJSON(w, http.StatusOK, monthResponse{
		MonthData: data,
		Prev:      monthRef{Year: py, Month: pm},
		Next:      monthRef{Year: ny, Month: nm},
	})
}

// broadcastFieldSaved publishes a field_saved event to WebSocket clients.
func (s *Server) broadcastFieldSaved(data FieldSavedData) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Printf("Failed to marshal field_saved data: %v", err)
		return
	}
	s.Broadcast(Message{
		Type:      MessageTypeFieldSaved,
		Timestamp: time.Now(),
		Data:      raw,
	})
}
