// Package emulator is an in-memory stand-in for the document store's REST
// API. It serves the subset the store client uses: create, get, list,
// masked patch, delete, equality runQuery and listCollectionIds.
package emulator

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	nanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/document/patch"
	"github.com/kailas-cloud/medstore/internal/domain/field"
	"github.com/kailas-cloud/medstore/internal/domain/query"
)

// Root is the documents root path the emulator serves.
const Root = "/v1/projects/local/databases/default/documents"

// ResourcePrefix is the resource name prefix of every stored document.
const ResourcePrefix = "projects/local/databases/default/documents"

// Generated ids look like the store's: 20 alphanumeric characters.
const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 20
)

const defaultPageSize = 100

// Emulator holds collections in memory. Safe for concurrent use.
type Emulator struct {
	mu          sync.RWMutex
	collections map[string]*collection

	newID    func() (string, error)
	now      func() time.Time
	pageSize int
	logger   *zap.Logger
	router   chi.Router
}

// collection keeps insertion order so list and query results are stable.
type collection struct {
	order []string
	docs  map[string]*document.Read
}

// Option configures an Emulator.
type Option func(*Emulator)

// WithPageSize sets the default list page size.
func WithPageSize(n int) Option {
	return func(e *Emulator) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emulator) { e.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Emulator) { e.now = now }
}

// WithIDGenerator overrides document id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Emulator) { e.newID = gen }
}

// New creates an empty emulator.
func New(opts ...Option) *Emulator {
	e := &Emulator{
		collections: make(map[string]*collection),
		newID:       func() (string, error) { return nanoid.Generate(idAlphabet, idLength) },
		now:         time.Now,
		pageSize:    defaultPageSize,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}

	r := chi.NewRouter()
	r.Post(Root+":runQuery", e.runQuery)
	r.Post(Root+":listCollectionIds", e.listCollectionIDs)
	r.Post(Root+"/{collection}", e.create)
	r.Get(Root+"/{collection}", e.list)
	r.Get(Root+"/{collection}/{id}", e.get)
	r.Patch(Root+"/{collection}/{id}", e.patch)
	r.Delete(Root+"/{collection}/{id}", e.delete)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	e.router = r
	return e
}

// ServeHTTP implements http.Handler.
func (e *Emulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.router.ServeHTTP(w, r)
}

// Len returns the number of documents in a collection.
func (e *Emulator) Len(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if c, ok := e.collections[name]; ok {
		return len(c.order)
	}
	return 0
}

// Document returns a copy of one stored document.
func (e *Emulator) Document(name, id string) (document.Read, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.collections[name]
	if !ok {
		return document.Read{}, false
	}
	d, ok := c.docs[id]
	if !ok {
		return document.Read{}, false
	}
	return copyDoc(d), true
}

func (e *Emulator) create(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	var body document.Write
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid document: "+err.Error())
		return
	}

	id := r.URL.Query().Get("documentId")
	if id == "" {
		var err error
		if id, err = e.newID(); err != nil {
			writeStatus(w, http.StatusInternalServerError, "INTERNAL", err.Error())
			return
		}
	}

	now := e.now().UTC()
	doc := &document.Read{
		Name:       resourceName(name, id),
		Fields:     nonNil(body.Fields).Clone(),
		CreateTime: now,
		UpdateTime: now,
	}

	e.mu.Lock()
	c := e.collection(name)
	if _, exists := c.docs[id]; exists {
		e.mu.Unlock()
		writeStatus(w, http.StatusConflict, "ALREADY_EXISTS", "document already exists: "+doc.Name)
		return
	}
	c.put(id, doc)
	out := copyDoc(doc)
	e.mu.Unlock()

	e.logger.Debug("emulator create", zap.String("collection", name), zap.String("id", id))
	writeJSON(w, http.StatusOK, out)
}

func (e *Emulator) get(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	doc, ok := e.Document(name, id)
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "no entity to get: "+resourceName(name, id))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// list pages through a collection. The page token is the offset of the
// next page.
func (e *Emulator) list(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	size := e.pageSize
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid pageSize "+v)
			return
		}
		if n > 0 {
			size = n
		}
	}
	offset := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid pageToken")
			return
		}
		offset = n
	}

	e.mu.RLock()
	var out document.List
	if c, ok := e.collections[name]; ok && offset < len(c.order) {
		end := min(offset+size, len(c.order))
		out.Documents = make([]document.Read, 0, end-offset)
		for _, id := range c.order[offset:end] {
			out.Documents = append(out.Documents, copyDoc(c.docs[id]))
		}
		if end < len(c.order) {
			out.NextPageToken = strconv.Itoa(end)
		}
	}
	e.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

// patch writes the masked fields. Masked paths missing from the body are
// removed. Without a mask the body replaces all fields. A missing document
// is created unless the exists precondition is set, as the store does.
func (e *Emulator) patch(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	var body document.Write
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid document: "+err.Error())
		return
	}
	mask := patch.NewMask(r.URL.Query()[patch.MaskParam]...)
	fields := nonNil(body.Fields)
	for k := range fields {
		if mask.Len() > 0 && !mask.Contains(k) {
			writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT",
				fmt.Sprintf("field %q is not in the update mask", k))
			return
		}
	}

	now := e.now().UTC()
	e.mu.Lock()
	c := e.collection(name)
	doc, ok := c.docs[id]
	if !ok && r.URL.Query().Get(patch.ExistsParam) == "true" {
		e.mu.Unlock()
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "no entity to update: "+resourceName(name, id))
		return
	}
	if !ok {
		doc = &document.Read{Name: resourceName(name, id), Fields: field.Fields{}, CreateTime: now}
		c.put(id, doc)
	}
	if mask.Len() == 0 {
		doc.Fields = fields.Clone()
	} else {
		for _, p := range mask.Fields() {
			if v, ok := fields[p]; ok {
				doc.Fields[p] = v
			} else {
				delete(doc.Fields, p)
			}
		}
	}
	doc.UpdateTime = now
	out := copyDoc(doc)
	e.mu.Unlock()

	e.logger.Debug("emulator patch",
		zap.String("collection", name),
		zap.String("id", id),
		zap.Strings("mask", mask.Fields()),
	)
	writeJSON(w, http.StatusOK, out)
}

func (e *Emulator) delete(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	e.mu.Lock()
	if c, ok := e.collections[name]; ok {
		c.remove(id)
	}
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, struct{}{})
}

// runQuery evaluates equality filters in insertion order. Like the store, a
// query without matches answers with a single readTime-only element.
func (e *Emulator) runQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid query: "+err.Error())
		return
	}
	name := req.Collection()
	if name == "" {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "query has no collection")
		return
	}
	conds := req.Conditions()
	limit := req.StructuredQuery.Limit

	readTime := e.now().UTC()
	out := make([]document.Match, 0)
	e.mu.RLock()
	if c, ok := e.collections[name]; ok {
		for _, id := range c.order {
			if limit > 0 && len(out) >= limit {
				break
			}
			d := c.docs[id]
			if conds.Matches(d.Fields) {
				cp := copyDoc(d)
				out = append(out, document.Match{Document: &cp, ReadTime: readTime})
			}
		}
	}
	e.mu.RUnlock()

	if len(out) == 0 {
		out = append(out, document.Match{ReadTime: readTime})
	}
	writeJSON(w, http.StatusOK, out)
}

func (e *Emulator) listCollectionIDs(w http.ResponseWriter, _ *http.Request) {
	e.mu.RLock()
	ids := make([]string, 0, len(e.collections))
	for name, c := range e.collections {
		if len(c.order) > 0 {
			ids = append(ids, name)
		}
	}
	e.mu.RUnlock()
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, map[string][]string{"collectionIds": ids})
}

// collection returns the named collection, creating it. Callers hold e.mu.
func (e *Emulator) collection(name string) *collection {
	c, ok := e.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]*document.Read)}
		e.collections[name] = c
	}
	return c
}

func (c *collection) put(id string, d *document.Read) {
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = d
}

func (c *collection) remove(id string) {
	if _, ok := c.docs[id]; !ok {
		return
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
}

func resourceName(collection, id string) string {
	return ResourcePrefix + "/" + collection + "/" + id
}

func copyDoc(d *document.Read) document.Read {
	cp := *d
	cp.Fields = d.Fields.Clone()
	return cp
}

func nonNil(f field.Fields) field.Fields {
	if f == nil {
		return field.Fields{}
	}
	return f
}

type statusBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func writeStatus(w http.ResponseWriter, code int, status, msg string) {
	var b statusBody
	b.Error.Code, b.Error.Message, b.Error.Status = code, msg, status
	writeJSON(w, code, b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
