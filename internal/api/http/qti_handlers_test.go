package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	qtihttp "github.com/artpromedia/aivo-qti/internal/api/http"
	"github.com/artpromedia/aivo-qti/internal/bank"
	"github.com/artpromedia/aivo-qti/internal/qti/export"
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/parser"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

const itemXML = `<assessmentItem xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1" identifier="q1" title="Demo">
  <responseDeclaration identifier="RESPONSE" cardinality="single" baseType="identifier">
    <correctResponse><value>a</value></correctResponse>
  </responseDeclaration>
  <itemBody>
    <choiceInteraction responseIdentifier="RESPONSE" maxChoices="1">
      <simpleChoice identifier="a">A</simpleChoice>
      <simpleChoice identifier="b">B</simpleChoice>
    </choiceInteraction>
  </itemBody>
  <responseProcessing template="http://www.imsglobal.org/question/qti_v2p1/rptemplates/match_correct"/>
</assessmentItem>`

func newTestRouter(store bank.Store) http.Handler {
	r := chi.NewRouter()
	proc := processor.New()
	r.Post("/qti/items", qtihttp.ParseItemHandler(store))
	r.Post("/qti/import", qtihttp.ImportPackageHandler(store))
	r.Get("/qti/items/{itemID}", qtihttp.GetItemHandler(store))
	r.Get("/qti/items/{itemID}/export", qtihttp.ExportItemHandler(store))
	r.Post("/qti/items/{itemID}/score", qtihttp.ScoreHandler(store, proc))
	r.Get("/qti/results/{resultID}", qtihttp.GetResultHandler(store))
	return r
}

func TestParseItemEndpoint(t *testing.T) {
	store := bank.NewInMemoryStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/qti/items", strings.NewReader(itemXML))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		ID   string `json:"id"`
		Item struct {
			Identifier string `json:"identifier"`
		} `json:"item"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "q1" || resp.Item.Identifier != "q1" {
		t.Errorf("resp = %+v, want registration under the document identifier", resp)
	}
	if _, err := store.GetItem(context.Background(), "q1"); err != nil {
		t.Errorf("item not stored: %v", err)
	}
}

func TestParseItemEndpointIDOverride(t *testing.T) {
	store := bank.NewInMemoryStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/qti/items?id=custom-42", strings.NewReader(itemXML))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := store.GetItem(context.Background(), "custom-42"); err != nil {
		t.Errorf("item not stored under the override id: %v", err)
	}
}

func TestParseItemEndpointRejectsBrokenXML(t *testing.T) {
	router := newTestRouter(bank.NewInMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/qti/items", strings.NewReader("<assessmentItem"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestGetItemEndpoint(t *testing.T) {
	store := bank.NewInMemoryStore()
	_ = store.PutItem(context.Background(), "q1", &model.AssessmentItem{Identifier: "q1"})
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qti/items/q1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qti/items/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestScoreEndpoint(t *testing.T) {
	store := bank.NewInMemoryStore()
	router := newTestRouter(store)

	// register the item through the API, then score it
	req := httptest.NewRequest(http.MethodPost, "/qti/items", strings.NewReader(itemXML))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("setup status = %d", rec.Code)
	}

	body := `{"responses": [{"identifier": "RESPONSE", "value": "a"}]}`
	req = httptest.NewRequest(http.MethodPost, "/qti/items/q1/score", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var stored bank.ResultRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !stored.Result.IsCorrect || stored.Result.TotalScore != 1 {
		t.Errorf("result = %+v, want a correct score", stored.Result)
	}
	if stored.ID == "" || stored.ItemID != "q1" {
		t.Errorf("record = %+v", stored)
	}

	// the record is retrievable afterwards
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qti/results/"+stored.ID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("result fetch status = %d", rec.Code)
	}
}

func TestScoreEndpointArrayValues(t *testing.T) {
	store := bank.NewInMemoryStore()
	_ = store.PutItem(context.Background(), "multi", &model.AssessmentItem{
		Identifier: "multi",
		ResponseDeclarations: []model.ResponseDeclaration{
			{
				Identifier:  "RESPONSE",
				Cardinality: model.CardinalityMultiple,
				BaseType:    model.BaseTypeIdentifier,
				Correct:     []string{"a", "b"},
			},
		},
	})
	router := newTestRouter(store)

	body := `{"responses": [{"identifier": "RESPONSE", "value": ["b", "a"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/qti/items/multi/score", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stored bank.ResultRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !stored.Result.IsCorrect {
		t.Errorf("result = %+v, want correct for the unordered pair", stored.Result)
	}
}

func TestScoreEndpointBadJSON(t *testing.T) {
	store := bank.NewInMemoryStore()
	_ = store.PutItem(context.Background(), "q1", &model.AssessmentItem{Identifier: "q1"})
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/qti/items/q1/score", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	store := bank.NewInMemoryStore()
	item, _, err := parser.ParseItem([]byte(itemXML))
	if err != nil {
		t.Fatal(err)
	}
	_ = store.PutItem(context.Background(), "q1", item)
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qti/items/q1/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	pkg, err := parser.ParsePackage(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("exported package does not re-parse: %v", err)
	}
	if _, ok := pkg.Items["q1"]; !ok {
		t.Errorf("exported package items = %v", pkg.Items)
	}
}

func TestImportEndpoint(t *testing.T) {
	item, _, err := parser.ParseItem([]byte(itemXML))
	if err != nil {
		t.Fatal(err)
	}
	zipBytes, err := export.BuildPackage(map[string]*model.AssessmentItem{"res-1": item})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "package.zip")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(zipBytes); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	store := bank.NewInMemoryStore()
	router := newTestRouter(store)
	req := httptest.NewRequest(http.MethodPost, "/qti/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if _, err := store.GetItem(context.Background(), "res-1"); err != nil {
		t.Errorf("imported item not stored: %v", err)
	}
}
