package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/shifumi/internal/app"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/store"
)

// Sampler saves the current hand crop as a labelled sample.
type Sampler interface {
	SaveSample(label gesture.Move) (*store.Sample, error)
}

// SamplesHandler handles HTTP requests for training samples.
type SamplesHandler struct {
	store   *store.Store
	sampler Sampler
}

// NewSamplesHandler creates a new SamplesHandler.
func NewSamplesHandler(s *store.Store, sampler Sampler) *SamplesHandler {
	return &SamplesHandler{store: s, sampler: sampler}
}

// Register adds the sample routes to mux.
func (h *SamplesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/samples", h.collection)
	mux.HandleFunc("/api/samples/counts", h.counts)
	mux.HandleFunc("/api/samples/{id}", h.item)
}

// samples returns the repository or writes 503 when no store is configured.
func (h *SamplesHandler) samples(w http.ResponseWriter) (*store.SampleRepository, bool) {
	if h.store == nil {
		writeDomainError(w, app.ErrNoStore)
		return nil, false
	}
	return h.store.Samples(), true
}

type createSampleRequest struct {
	Gesture string `json:"gesture"`
}

type sampleResponse struct {
	ID        string `json:"id"`
	Gesture   string `json:"gesture"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

func toSampleResponse(s *store.Sample) sampleResponse {
	return sampleResponse{
		ID:        s.ID,
		Gesture:   string(s.Gesture),
		Width:     s.Width,
		Height:    s.Height,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

// collection handles GET and POST /api/samples
func (h *SamplesHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// create handles POST /api/samples
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	label, err := gesture.ParseMove(req.Gesture)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sample, err := h.sampler.SaveSample(label)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSampleResponse(sample))
}

// list handles GET /api/samples?gesture=Rock&limit=50
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	label := gesture.NoMove
	if v := r.URL.Query().Get("gesture"); v != "" {
		m, err := gesture.ParseMove(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		label = m
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	repo, ok := h.samples(w)
	if !ok {
		return
	}
	samples, err := repo.List(label, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response := listSamplesResponse{Samples: make([]sampleResponse, 0, len(samples))}
	for i := range samples {
		response.Samples = append(response.Samples, toSampleResponse(&samples[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

// counts handles GET /api/samples/counts
func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	repo, ok := h.samples(w)
	if !ok {
		return
	}
	counts, err := repo.Counts()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response := make(map[string]int, len(counts))
	for m, n := range counts {
		response[string(m)] = n
	}
	writeJSON(w, http.StatusOK, response)
}

// item handles GET and DELETE /api/samples/{id}
func (h *SamplesHandler) item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	repo, ok := h.samples(w)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		sample, err := repo.Get(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Content-Length", strconv.Itoa(len(sample.Image)))
		w.WriteHeader(http.StatusOK)
		w.Write(sample.Image)
	case http.MethodDelete:
		if err := repo.Delete(id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
