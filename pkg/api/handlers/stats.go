package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"chatportal/pkg/utils"
)

// stats handles GET /stats: record counts and humanized on-disk size.
func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.CollectStats()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversations int    `json:"conversations"`
		Messages      int    `json:"messages"`
		DiskBytes     uint64 `json:"disk_bytes"`
		DiskSize      string `json:"disk_size"`
	}{st.Conversations, st.Messages, st.DiskBytes, humanize.Bytes(st.DiskBytes)})
}
