package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Sternrassler/dexview/internal/session"
	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/view"
)

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type recordDTO struct {
	ID              int      `json:"id"`
	Number          string   `json:"number"`
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	Height          int      `json:"height"`
	Weight          int      `json:"weight"`
	HeightMetres    float64  `json:"height_m"`
	WeightKilograms float64  `json:"weight_kg"`
	BaseExperience  int      `json:"base_experience"`
	Types           []string `json:"types"`
	ArtworkURL      string   `json:"artwork_url"`
}

type queryDTO struct {
	Sort  view.SortKey   `json:"sort"`
	Order view.Direction `json:"order"`
	Types []string       `json:"types"`
}

type viewDTO struct {
	Records []recordDTO `json:"records"`
	Shown   int         `json:"shown"`
	Total   int         `json:"total"`
	Start   int         `json:"start,omitempty"`
	End     int         `json:"end,omitempty"`
	Query   queryDTO    `json:"query"`
}

type typesDTO struct {
	Types []catalog.TypeTag `json:"types"`
	Error string            `json:"error,omitempty"`
}

type rangeRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func toRecordDTO(r catalog.Record) recordDTO {
	types := r.Types
	if types == nil {
		types = []string{}
	}
	return recordDTO{
		ID:              r.ID,
		Number:          r.Number(),
		Name:            r.Name,
		DisplayName:     r.DisplayName(),
		Height:          r.Height,
		Weight:          r.Weight,
		HeightMetres:    r.HeightMetres(),
		WeightKilograms: r.WeightKilograms(),
		BaseExperience:  r.BaseExperience,
		Types:           types,
		ArtworkURL:      r.ArtworkURL,
	}
}

func toViewDTO(snap session.Snapshot) viewDTO {
	records := make([]recordDTO, 0, len(snap.Records))
	for _, r := range snap.Records {
		records = append(records, toRecordDTO(r))
	}

	types := snap.Query.Types
	if types == nil {
		types = []string{}
	}

	return viewDTO{
		Records: records,
		Shown:   len(records),
		Total:   snap.Total,
		Start:   snap.Start,
		End:     snap.End,
		Query:   queryDTO{Sort: snap.Query.SortKey, Order: snap.Query.Direction, Types: types},
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode error response")
	}
}

// handleTypes returns the type vocabulary; an unavailable vocabulary is an
// empty list plus a message, not an error status.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	vocab := s.deps.Vocabulary

	dto := typesDTO{Types: vocab.Tags()}
	if dto.Types == nil {
		dto.Types = []catalog.TypeTag{}
	}
	if vocab.Err() != nil {
		dto.Error = msgTypesFailed
	}

	s.respondJSON(w, http.StatusOK, dto)
}

// handleRange fetches a new range into the caller's session and returns the
// projection under the session's current query.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req rangeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, codeBadRequest, "Request body must be JSON with integer start and end.")
		return
	}

	if err := sess.Load(r.Context(), s.deps.Fetcher, req.Start, req.End); err != nil {
		code, message := describeError(err)
		status := http.StatusBadGateway
		if code == codeInvalidRange {
			status = http.StatusBadRequest
		}
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Int("start", req.Start).Int("end", req.End).Msg("Range fetch rejected")
		s.respondError(w, status, code, message)
		return
	}

	s.respondJSON(w, http.StatusOK, toViewDTO(sess.View()))
}

// handleView applies any sort/order/type/toggle parameters to the session's
// query and returns the projection. It never touches the network.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	q, changed, err := applyQueryParams(sess.Query(), r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
		return
	}
	if changed {
		sess.SetQuery(q)
	}

	s.respondJSON(w, http.StatusOK, toViewDTO(sess.View()))
}

// applyQueryParams overlays request parameters on q. "type" replaces the
// whole selection (repeatable or comma separated), "toggle" flips a single
// type, "clear" empties the selection.
func applyQueryParams(q view.Query, params url.Values) (view.Query, bool, error) {
	changed := false

	if params.Has("sort") {
		key, err := view.ParseSortKey(params.Get("sort"))
		if err != nil {
			return q, false, err
		}
		q.SortKey, changed = key, true
	}
	if params.Has("order") {
		dir, err := view.ParseDirection(params.Get("order"))
		if err != nil {
			return q, false, err
		}
		q.Direction, changed = dir, true
	}
	if params.Has("type") || params.Has("clear") {
		q.Types, changed = view.NormalizeTypes(params["type"]), true
	}
	for _, name := range params["toggle"] {
		q, changed = q.ToggleType(name), true
	}

	return q, changed, nil
}
