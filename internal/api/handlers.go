package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/healthshield/mentions-bot/internal/models"
)

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// MentionPage is one page of a mention listing
type MentionPage struct {
	Items    []models.Mention `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
}

func (s *Server) addKeywordHandler(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kw, err := s.keywords.Add(r.Context(), req.Keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, kw)
}

func (s *Server) listKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	kws, err := s.keywords.Active(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if kws == nil {
		kws = []models.Keyword{}
	}
	writeJSON(w, http.StatusOK, kws)
}

func (s *Server) removeKeywordHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	hard := r.URL.Query().Get("hard_delete") == "true"

	if err := s.keywords.Remove(r.Context(), id, hard); err != nil {
		writeError(w, err)
		return
	}

	action := "disabled"
	if hard {
		action = "deleted"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("keyword %s %s", id, action)})
}

func (s *Server) listMentionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	pageSize, err := intParam(r, "page_size", models.DefaultPageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	filter := models.ListFilter{
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		DataSource: q.Get("data_source"),
		Status:     q.Get("status"),
		Keywords:   splitList(q.Get("keywords")),
		Page:       page,
		PageSize:   pageSize,
	}
	filter.Normalize()

	items, total, err := s.mentions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MentionPage{
		Items:    items,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	})
}

func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		writeError(w, fmt.Errorf("%w: status is required", models.ErrValidation))
		return
	}

	updated, err := s.mentions.UpdateFields(r.Context(), mux.Vars(r)["id"], models.MentionPatch{Status: &status})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", models.ErrValidation, err)
	}
	return nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", models.ErrValidation, name)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
