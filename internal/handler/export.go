package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"todoservice/internal/middleware"
)

// ExportTodos renders the caller's todos as an XML document.
func (h *Handler) ExportTodos(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	todos, err := h.svc.TodosByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("todos")
	root.CreateAttr("count", strconv.Itoa(len(todos)))
	for _, t := range todos {
		el := root.CreateElement("todo")
		el.CreateAttr("id", strconv.FormatInt(t.ID, 10))
		el.CreateAttr("complete", strconv.FormatBool(t.Complete))
		el.CreateElement("title").SetText(t.Title)
		el.CreateElement("created_at").SetText(t.CreatedAt.Format(time.RFC3339))
	}
	doc.Indent(2)

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	doc.WriteTo(w)
}
