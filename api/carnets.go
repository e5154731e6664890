package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/segtrack/carnets/internal/excel"
	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

// maxUploadBytes caps import uploads; the workbooks this service deals with
// are a few hundred rows at most.
const maxUploadBytes = 10 << 20

type CarnetsHandler struct {
	repo  repository.CarnetRepo
	today func() time.Time
}

// NewCarnetsHandler creates the handler. A nil clock defaults to time.Now;
// tests inject a fixed day to pin the derived statuses.
func NewCarnetsHandler(repo repository.CarnetRepo, clock func() time.Time) *CarnetsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CarnetsHandler{repo: repo, today: clock}
}

// carnetJSON is the wire shape of a carnet: ISO date strings plus the
// derived status, never the raw storage row.
type carnetJSON struct {
	ID                  int64  `json:"id"`
	Surname             string `json:"surname"`
	GivenName           string `json:"given_name"`
	NationalID          string `json:"national_id"`
	EmployeeNumber      string `json:"employee_number"`
	QualificationDate   string `json:"qualification_date"`
	ExpirationDate      string `json:"expiration_date"`
	MedicalFitness      string `json:"medical_fitness"`
	Employer            string `json:"employer"`
	AuthorizationType   string `json:"authorization_type"`
	ResolutionReference string `json:"resolution_reference"`
	Status              string `json:"status"`
}

func toCarnetJSON(c *models.Carnet, today time.Time) carnetJSON {
	return carnetJSON{
		ID:                  c.ID,
		Surname:             c.Surname,
		GivenName:           c.GivenName,
		NationalID:          c.NationalID,
		EmployeeNumber:      c.EmployeeNumber,
		QualificationDate:   c.QualificationDate.Format(models.DateLayout),
		ExpirationDate:      c.ExpirationDate.Format(models.DateLayout),
		MedicalFitness:      c.MedicalFitness,
		Employer:            c.Employer,
		AuthorizationType:   c.AuthorizationType,
		ResolutionReference: c.ResolutionReference,
		Status:              c.Status(today),
	}
}

func toCarnetJSONList(carnets []models.Carnet, today time.Time) []carnetJSON {
	out := make([]carnetJSON, 0, len(carnets))
	for i := range carnets {
		out = append(out, toCarnetJSON(&carnets[i], today))
	}
	return out
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *CarnetsHandler) List(w http.ResponseWriter, r *http.Request) {
	carnets, err := h.repo.ListActive(r.Context())
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	writeJSON(w, toCarnetJSONList(carnets, h.today()), http.StatusOK)
}

func (h *CarnetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	writeJSON(w, toCarnetJSON(c, h.today()), http.StatusOK)
}

func (h *CarnetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if msg := validateCarnetPayload(r.Context(), body); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	var in repository.CarnetInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := h.repo.Create(r.Context(), &in)
	if err != nil {
		writeStoreError(w, err, true)
		return
	}

	writeJSON(w, toCarnetJSON(c, h.today()), http.StatusCreated)
}

func (h *CarnetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid id", http.StatusBadRequest)
		return
	}

	var in repository.CarnetUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := h.repo.Update(r.Context(), id, &in)
	if err != nil {
		writeStoreError(w, err, true)
		return
	}

	writeJSON(w, toCarnetJSON(c, h.today()), http.StatusOK)
}

func (h *CarnetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		writeStoreError(w, err, true)
		return
	}

	writeJSON(w, map[string]string{"message": "carnet deleted"}, http.StatusOK)
}

func (h *CarnetsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	carnets, err := h.repo.ListExpiring(r.Context(), today, models.WarningWindowDays)
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	writeJSON(w, toCarnetJSONList(carnets, today), http.StatusOK)
}

func (h *CarnetsHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	today := h.today()

	carnets, err := h.repo.Search(r.Context(), params.Get("q"), params.Get("status"), today)
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	writeJSON(w, toCarnetJSONList(carnets, today), http.StatusOK)
}

func (h *CarnetsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context(), h.today())
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

type importResponse struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported_count"`
	Errors   []string `json:"errors"`
}

func (h *CarnetsHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "no file attached", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, "no file attached", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := excel.ReadCarnets(file)
	if err != nil {
		writeError(w, fmt.Sprintf("unreadable workbook: %v", err), http.StatusBadRequest)
		return
	}

	res := excel.Import(r.Context(), h.repo, rows)
	writeJSON(w, importResponse{
		Message:  "import completed",
		Imported: res.Imported,
		Errors:   res.Errors,
	}, http.StatusOK)
}

func (h *CarnetsHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	carnets, err := h.repo.ListActive(r.Context())
	if err != nil {
		writeStoreError(w, err, false)
		return
	}

	buf, err := excel.BuildWorkbook(carnets, today)
	if err != nil {
		logger.Error("build workbook", "err", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", excel.ExportFilename(today)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("write workbook", "err", err)
	}
}
