package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/artpromedia/aivo-qti/internal/bank"
	"github.com/artpromedia/aivo-qti/internal/qti/export"
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/parser"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

// POST /qti/items (body: raw item XML; optional ?id= registration id)
func ParseItemHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 8<<20))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		item, warnings, err := parser.ParseItem(body)
		if err != nil {
			parsesTotal.WithLabelValues("item", "error").Inc()
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		parsesTotal.WithLabelValues("item", "ok").Inc()

		id := r.URL.Query().Get("id")
		if id == "" {
			id = item.Identifier
		}
		if err := store.PutItem(r.Context(), id, item); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id, "item": item, "warnings": warnings})
	}
}

// POST /qti/import (multipart: file=package.zip)
func ImportPackageHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		zipBytes, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusInternalServerError)
			return
		}

		pkg, err := parser.ParsePackage(zipBytes)
		if err != nil {
			parsesTotal.WithLabelValues("package", "error").Inc()
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		parsesTotal.WithLabelValues("package", "ok").Inc()

		itemIDs := make([]string, 0, len(pkg.Items))
		for id, item := range pkg.Items {
			if err := store.PutItem(r.Context(), id, item); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			itemIDs = append(itemIDs, id)
		}
		writeJSON(w, map[string]any{
			"filename": hdr.Filename,
			"version":  pkg.Version,
			"items":    itemIDs,
			"warnings": pkg.Warnings,
		})
	}
}

// GET /qti/items/{itemID}
func GetItemHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "itemID")
		item, err := store.GetItem(r.Context(), id)
		if err != nil {
			if errors.Is(err, bank.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, item)
	}
}

// GET /qti/items/{itemID}/export
func ExportItemHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "itemID")
		item, err := store.GetItem(r.Context(), id)
		if err != nil {
			if errors.Is(err, bank.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		zipBytes, err := export.BuildPackage(map[string]*model.AssessmentItem{id: item})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.zip"`)
		_, _ = w.Write(zipBytes)
	}
}

// POST /qti/items/{itemID}/score
// Body: {"responses": [{"identifier": "RESPONSE", "value": "A"}]}
// value may be a scalar or an array; both decode to a value list.
func ScoreHandler(store bank.Store, proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "itemID")
		item, err := store.GetItem(r.Context(), id)
		if err != nil {
			if errors.Is(err, bank.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if !gjson.ValidBytes(body) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		responses := decodeResponses(gjson.GetBytes(body, "responses"))

		result := proc.Process(item, responses)
		scoringsTotal.WithLabelValues(statusLabel(result)).Inc()

		rec := bank.ResultRecord{
			ID:        uuid.NewString(),
			ItemID:    id,
			Result:    result,
			CreatedAt: time.Now().Unix(),
		}
		if err := store.PutResult(r.Context(), rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	}
}

// GET /qti/results/{resultID}
func GetResultHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "resultID")
		rec, err := store.GetResult(r.Context(), id)
		if err != nil {
			if errors.Is(err, bank.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	}
}

// decodeResponses tolerates scalar-or-array value fields the way the
// parser tolerates single-or-repeated XML children.
func decodeResponses(node gjson.Result) []processor.Response {
	var out []processor.Response
	node.ForEach(func(_, entry gjson.Result) bool {
		resp := processor.Response{Identifier: entry.Get("identifier").String()}
		value := entry.Get("value")
		switch {
		case value.IsArray():
			value.ForEach(func(_, v gjson.Result) bool {
				resp.Values = append(resp.Values, v.String())
				return true
			})
		case value.Exists() && value.Type != gjson.Null:
			resp.Values = []string{value.String()}
		}
		out = append(out, resp)
		return true
	})
	return out
}

func statusLabel(result processor.Result) string {
	if len(result.Errors) > 0 {
		return "degraded"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
