package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cloudnotes/cloudnotes/internal/domain"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/respond"
	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/notes"
)

// maxBodyBytes bounds request bodies; content alone is capped far below this.
const maxBodyBytes = 1 << 20

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type listResponse struct {
	Notes      []*domain.Note `json:"notes"`
	Pagination pagination     `json:"pagination"`
}

type createRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Tags     domain.TagList `json:"tags"`
	Category string         `json:"category"`
}

type updateRequest struct {
	Title    domain.Optional[string]         `json:"title"`
	Content  domain.Optional[string]         `json:"content"`
	Tags     domain.Optional[domain.TagList] `json:"tags"`
	Category domain.Optional[string]         `json:"category"`
}

func (u updateRequest) patch() domain.NotePatch {
	p := domain.NotePatch{
		Title:    u.Title,
		Content:  u.Content,
		Category: u.Category,
	}
	if u.Tags.Set {
		p.Tags = domain.Some([]string(u.Tags.Value))
	}
	return p
}

func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := notes.ListRequest{
			Filter: domain.Filter{
				Category: q.Get("category"),
				Search:   q.Get("search"),
			},
			Page:  queryInt(q.Get("page")),
			Limit: queryInt(q.Get("limit")),
		}
		if q.Has("pinned") {
			pinned := q.Get("pinned") == "true"
			req.Filter.Pinned = &pinned
		}

		res, err := d.Notes.List(r.Context(), identity.OwnerFrom(r.Context()), req)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, listResponse{
			Notes: nonNil(res.Notes),
			Pagination: pagination{
				Page:  res.Page,
				Limit: res.Limit,
				Total: res.Total,
				Pages: res.Pages,
			},
		})
	}
}

func GetNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		n, err := d.Notes.Get(r.Context(), identity.OwnerFrom(r.Context()), id)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func CreateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if !decode(w, r, &req) {
			return
		}
		n, err := d.Notes.Create(r.Context(), identity.OwnerFrom(r.Context()), domain.NewNoteInput{
			Title:    req.Title,
			Content:  req.Content,
			Tags:     []string(req.Tags),
			Category: req.Category,
		})
		if err != nil {
			countQuota(d, err)
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusCreated, n)
	}
}

func UpdateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		var req updateRequest
		if !decode(w, r, &req) {
			return
		}
		n, err := d.Notes.Update(r.Context(), identity.OwnerFrom(r.Context()), id, req.patch())
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func TogglePin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		n, err := d.Notes.TogglePin(r.Context(), identity.OwnerFrom(r.Context()), id)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func DeleteNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		if err := d.Notes.Delete(r.Context(), identity.OwnerFrom(r.Context()), id); err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.Message(w, http.StatusOK, "Note deleted successfully")
	}
}

func SearchNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := searchQuery(w, r)
		if !ok {
			return
		}
		found, err := d.Notes.Search(r.Context(), identity.OwnerFrom(r.Context()), query)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, nonNil(found))
	}
}

func NoteStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Notes.Stats(r.Context(), identity.OwnerFrom(r.Context()))
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		if st.CategoriesList == nil {
			st.CategoriesList = []string{}
		}
		if st.PopularTags == nil {
			st.PopularTags = []domain.TagCount{}
		}
		respond.JSON(w, http.StatusOK, st)
	}
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := d.Notes.Categories(r.Context(), identity.OwnerFrom(r.Context()))
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, nonNilStrings(cats))
	}
}

func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Notes.Tags(r.Context(), identity.OwnerFrom(r.Context()))
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, nonNilStrings(tags))
	}
}

// noteID validates the {id} path parameter and answers 400 when malformed.
func noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid note ID")
		return "", false
	}
	return id, true
}

// searchQuery returns the decoded {query} path parameter. chi matches on
// RawPath when the request has one, leaving the parameter percent-encoded.
func searchQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := chi.URLParam(r, "query")
	if r.URL.RawPath == "" {
		return query, true
	}
	decoded, err := url.PathUnescape(query)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid search query")
		return "", false
	}
	return decoded, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respond.Message(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	respond.Message(w, http.StatusBadRequest, "Invalid request body")
	return false
}

func countQuota(d deps.Deps, err error) {
	if d.Metrics != nil && errors.Is(err, domain.ErrQuotaExceeded) {
		d.Metrics.QuotaRejections.Inc()
	}
}

// queryInt parses a positive query value; anything else means "use the default".
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func nonNil(ns []*domain.Note) []*domain.Note {
	if ns == nil {
		return []*domain.Note{}
	}
	return ns
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
