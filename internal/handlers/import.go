// internal/handlers/import.go
package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/cqrs"
	"finance-predictor/internal/importer"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"

	"github.com/sirupsen/logrus"
)

const maxUploadBytes = 10 << 20

// ImportResponse previews a parsed statement.
type ImportResponse struct {
	Filename     string               `json:"filename"`
	Count        int                  `json:"count"`
	Committed    bool                 `json:"committed"`
	Skipped      []string             `json:"skipped,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
}

// ImportHandler accepts a bank statement upload in the multipart field "file".
// Without ?commit=true the response previews the parsed rows. With it the rows are stored
// and the response lists them as stored, with ids and categories.
type ImportHandler struct {
	mediator *cqrs.Mediator
}

func NewImportHandler(m *cqrs.Mediator) *ImportHandler {
	return &ImportHandler{mediator: m}
}

func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		apperr.Write(w, r, apperr.Invalid("failed to parse form: file too large or invalid"))
		return
	}

	file, header, err := formFile(r, "file", "csv")
	if err != nil {
		apperr.Write(w, r, apperr.Invalid("no statement file provided"))
		return
	}
	defer file.Close()

	log.WithFields(logrus.Fields{
		"filename": header.Filename,
		"size":     header.Size,
	}).Info("statement received")

	result, err := importer.Parse(file)
	if err != nil {
		apperr.Write(w, r, apperr.Invalid("failed to parse statement: %v", err))
		return
	}

	commit := false
	if v := r.URL.Query().Get("commit"); v != "" {
		if commit, err = strconv.ParseBool(v); err != nil {
			apperr.Write(w, r, apperr.Invalid("invalid value for commit: %q", v))
			return
		}
	}
	rows := result.Transactions
	if commit {
		stored, err := cqrs.Send[[]models.Transaction](r.Context(), h.mediator, contracts.ImportTransactions{Transactions: rows})
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		rows = stored
	}

	log.WithFields(logrus.Fields{
		"parsed":    len(result.Transactions),
		"skipped":   len(result.Skipped),
		"committed": commit,
	}).Info("statement imported")

	apperr.WriteJSON(w, r, http.StatusOK, ImportResponse{
		Filename:     header.Filename,
		Count:        len(rows),
		Committed:    commit,
		Skipped:      result.Skipped,
		Transactions: rows,
	})
}

func formFile(r *http.Request, fields ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, f := range fields {
		file, header, err := r.FormFile(f)
		if err == nil {
			return file, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("read form file %q: %w", f, err)
		}
	}
	return nil, nil, http.ErrMissingFile
}
