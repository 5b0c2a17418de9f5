package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"deviseur/internal/app"
	"deviseur/internal/catalog"
	"deviseur/internal/document"
	"deviseur/internal/storage"
)

// ErrorResponse is the JSON body of every failed API call. Message is the
// French text meant for the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type userMessage struct {
	status  int
	code    string
	message string
}

var errBadRequest = errors.New("bad request")

func mapError(err error) userMessage {
	switch {
	case errors.Is(err, document.ErrEmptyQuote):
		return userMessage{http.StatusConflict, "EMPTY_QUOTE", document.MsgEmptyQuote}
	case errors.Is(err, catalog.ErrEmptyCatalogue):
		return userMessage{http.StatusUnprocessableEntity, "EMPTY_CATALOGUE", catalog.MsgEmpty}
	case errors.Is(err, app.ErrUnknownProduct):
		return userMessage{http.StatusNotFound, "UNKNOWN_PRODUCT", "Ce produit n'existe pas dans le catalogue chargé."}
	case errors.Is(err, app.ErrLineNotFound):
		return userMessage{http.StatusNotFound, "LINE_NOT_FOUND", "Cette ligne ne figure pas dans le devis."}
	case errors.Is(err, app.ErrNoCatalogue):
		return userMessage{http.StatusConflict, "NO_CATALOGUE", "Chargez le catalogue avant d'importer un devis."}
	case errors.Is(err, app.ErrWrongMode):
		return userMessage{http.StatusConflict, "WRONG_QUANTITY_MODE", "Cette opération ne s'applique pas à ce type de quantité."}
	case errors.Is(err, storage.ErrNotFound):
		return userMessage{http.StatusNotFound, "QUOTE_NOT_FOUND", "Ce devis enregistré est introuvable."}
	case errors.Is(err, errBadRequest):
		return userMessage{http.StatusBadRequest, "BAD_REQUEST", "Requête invalide."}
	default:
		return userMessage{http.StatusInternalServerError, "INTERNAL", "Une erreur est survenue."}
	}
}

// respondError logs err with the request id and writes its mapped JSON body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := mapError(err)

	log.WithFields(log.Fields{
		"path":       r.URL.Path,
		"method":     r.Method,
		"status":     msg.status,
		"code":       msg.code,
		"request_id": middleware.GetReqID(r.Context()),
	}).WithError(err).Warn("request error")

	writeJSON(w, msg.status, ErrorResponse{
		Error:   err.Error(),
		Message: msg.message,
		Code:    msg.code,
	})
}
