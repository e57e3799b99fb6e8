package httpapi

import "net/http"

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

// handleImageUploadURL hands an author a presigned PUT URL; the image bytes
// go straight to object storage without passing through this server.
func (a *API) handleImageUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := a.imageSvc.PresignedUploadURL(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), "presigning upload url", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

func (a *API) handleImageDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := a.imageSvc.PresignedDownloadURL(r.Context(), key)
	if err != nil {
		a.logger.Error(r.Context(), "presigning download url", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, downloadURLResponse{URL: url})
}
