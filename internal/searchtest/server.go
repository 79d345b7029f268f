package searchtest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2"
)

// AliasAction is one entry of a POST /_aliases body.
type AliasAction struct {
	Op    string // "add" or "remove"
	Index string
	Alias string
}

// Fault is an injected error response.
type Fault struct {
	Status int
	Body   string
}

// creationBase is the creation_date of the first index, 2024-01-01 UTC.
const creationBase int64 = 1704067200000

// Doc is a stored document.
type Doc struct {
	ID     string
	Source map[string]any
}

type index struct {
	created  int64 // creation_date in epoch milliseconds
	settings map[string]any
	strict   bool
	fields   map[string]struct{}
	docs     []Doc
	byID     map[string]int
}

// Server is an in-memory stand-in for the OpenSearch REST API. It implements
// the endpoints the reindexer calls, with enough fidelity for the real
// opensearch-go client to run against it.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	indices  map[string]*index
	aliases  map[string]map[string]struct{}
	requests []string

	bulkFault    *Fault
	createFault  *Fault
	deleteFault  *Fault
	refreshFault *Fault
	aliasFault   func(actions []AliasAction) *Fault
	aliasNoAck   bool
	reject       func(doc map[string]any) bool
	created      int64
}

// New starts a fake cluster and closes it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		indices: make(map[string]*index),
		aliases: make(map[string]map[string]struct{}),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/", s.info)
	r.Get("/_alias/{name}", s.getAlias)
	r.Post("/_aliases", s.updateAliases)
	r.Post("/_bulk", s.bulk)
	r.Put("/_bulk", s.bulk)
	r.Head("/{index}", s.exists)
	r.Put("/{index}", s.create)
	r.Delete("/{index}", s.delete)
	r.Post("/{index}/_bulk", s.bulk)
	r.Put("/{index}/_bulk", s.bulk)
	r.Post("/{index}/_refresh", s.refresh)
	r.Get("/{index}/_refresh", s.refresh)
	r.Get("/{index}/_settings", s.settings)
	r.Get("/{index}/_settings/{name}", s.settings)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns an opensearch-go client pointed at the fake.
func (s *Server) Client(t testing.TB) *opensearch.Client {
	t.Helper()
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:    []string{s.URL},
		DisableRetry: true,
	})
	if err != nil {
		t.Fatalf("searchtest: create client: %v", err)
	}
	return client
}

// CreateIndex adds an empty index without going through the API.
func (s *Server) CreateIndex(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indices[name]; !ok {
		s.indices[name] = s.newIndex()
	}
}

// AddDoc stores a document in name, creating the index if needed.
func (s *Server) AddDoc(name string, source map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[name]
	if !ok {
		idx = s.newIndex()
		s.indices[name] = idx
	}
	idx.put(uuid.NewString(), source)
}

// SetAlias points alias at the given indices, replacing previous targets.
func (s *Server) SetAlias(alias string, indices ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	s.aliases[alias] = set
}

// Indices lists existing index names, sorted.
func (s *Server) Indices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.indices))
	for name := range s.indices {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasIndex reports whether name exists.
func (s *Server) HasIndex(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indices[name]
	return ok
}

// AliasTargets lists the indices behind alias, sorted.
func (s *Server) AliasTargets(alias string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.aliases[alias]))
	for name := range s.aliases[alias] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Docs returns the documents of name in insertion order.
func (s *Server) Docs(name string) []Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[name]
	if !ok {
		return nil
	}
	return append([]Doc(nil), idx.docs...)
}

// Sources returns only the document bodies of name.
func (s *Server) Sources(name string) []map[string]any {
	docs := s.Docs(name)
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = d.Source
	}
	return out
}

// Settings returns the settings name was created with, or nil.
func (s *Server) Settings(name string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indices[name]; ok {
		return idx.settings
	}
	return nil
}

// Requests returns "METHOD /path" for every request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts served requests with the given method and path prefix.
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		m, p, _ := strings.Cut(r, " ")
		if m == method && strings.HasPrefix(p, pathPrefix) {
			n++
		}
	}
	return n
}

// FailBulk makes every bulk request answer with status.
func (s *Server) FailBulk(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkFault = &Fault{Status: status, Body: errorBody("internal_server_error", "bulk rejected", status)}
}

// FailCreate makes index creation answer with status.
func (s *Server) FailCreate(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createFault = &Fault{Status: status, Body: errorBody("illegal_argument_exception", "create rejected", status)}
}

// FailDelete makes index deletion answer with status.
func (s *Server) FailDelete(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteFault = &Fault{Status: status, Body: errorBody("cluster_block_exception", "delete rejected", status)}
}

// FailRefresh makes refresh answer with status.
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshFault = &Fault{Status: status, Body: errorBody("cluster_block_exception", "refresh rejected", status)}
}

// FailAliases installs a hook consulted before any alias update is applied.
// A non-nil Fault aborts the request without changing any alias.
func (s *Server) FailAliases(fn func(actions []AliasAction) *Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliasFault = fn
}

// FailAliasOp fails every alias request that contains an action of op.
func (s *Server) FailAliasOp(op string, status int) {
	s.FailAliases(func(actions []AliasAction) *Fault {
		for _, a := range actions {
			if a.Op == op {
				return &Fault{Status: status, Body: errorBody("illegal_state_exception", op+" rejected", status)}
			}
		}
		return nil
	})
}

// UnacknowledgeAliases applies alias updates but answers acknowledged:false.
func (s *Server) UnacknowledgeAliases() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliasNoAck = true
}

// RejectDocs makes bulk items whose source matches fn fail with a mapping error.
func (s *Server) RejectDocs(fn func(doc map[string]any) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = fn
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "searchtest",
		"cluster_name": "searchtest",
		"version": map[string]any{
			"distribution": "opensearch",
			"number":       "2.11.0",
		},
		"tagline": "The OpenSearch Project: https://opensearch.org/",
	})
}

func (s *Server) exists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range splitNames(chi.URLParam(r, "index")) {
		if _, ok := s.indices[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.createFault; f != nil {
		writeRaw(w, f.Status, f.Body)
		return
	}
	if _, ok := s.indices[name]; ok {
		writeRaw(w, http.StatusBadRequest, errorBody("resource_already_exists_exception",
			fmt.Sprintf("index [%s] already exists", name), http.StatusBadRequest))
		return
	}

	idx := s.newIndex()
	if len(bytes.TrimSpace(body)) > 0 {
		var def struct {
			Settings map[string]any `json:"settings"`
			Mappings struct {
				Dynamic    any                        `json:"dynamic"`
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"mappings"`
		}
		if err := json.Unmarshal(body, &def); err != nil {
			writeRaw(w, http.StatusBadRequest, errorBody("parse_exception", err.Error(), http.StatusBadRequest))
			return
		}
		idx.settings = def.Settings
		idx.strict = fmt.Sprint(def.Mappings.Dynamic) == "strict"
		for field := range def.Mappings.Properties {
			idx.fields[field] = struct{}{}
		}
	}
	s.indices[name] = idx

	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "shards_acknowledged": true, "index": name})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	names := splitNames(chi.URLParam(r, "index"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.deleteFault; f != nil {
		writeRaw(w, f.Status, f.Body)
		return
	}
	for _, name := range names {
		if _, ok := s.indices[name]; !ok {
			writeRaw(w, http.StatusNotFound, indexNotFound(name))
			return
		}
	}
	for _, name := range names {
		delete(s.indices, name)
		for alias, targets := range s.aliases {
			delete(targets, name)
			if len(targets) == 0 {
				delete(s.aliases, alias)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

// settings answers GET /{index}/_settings with the creation date only.
func (s *Server) settings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]any{}
	for _, name := range splitNames(chi.URLParam(r, "index")) {
		idx, ok := s.indices[name]
		if !ok {
			writeRaw(w, http.StatusNotFound, indexNotFound(name))
			return
		}
		out[name] = map[string]any{"settings": map[string]any{
			"index": map[string]any{"creation_date": strconv.FormatInt(idx.created, 10)},
		}}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.refreshFault; f != nil {
		writeRaw(w, f.Status, f.Body)
		return
	}
	if _, ok := s.indices[name]; !ok {
		writeRaw(w, http.StatusNotFound, indexNotFound(name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_shards": map[string]int{"total": 1, "successful": 1, "failed": 0}})
}

func (s *Server) getAlias(w http.ResponseWriter, r *http.Request) {
	names := splitNames(chi.URLParam(r, "name"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]any{}
	for _, alias := range names {
		for idx := range s.aliases[alias] {
			entry, ok := out[idx].(map[string]any)
			if !ok {
				entry = map[string]any{"aliases": map[string]any{}}
				out[idx] = entry
			}
			entry["aliases"].(map[string]any)[alias] = map[string]any{}
		}
	}
	if len(out) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  fmt.Sprintf("alias [%s] missing", strings.Join(names, ",")),
			"status": http.StatusNotFound,
		})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateAliases(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Actions []map[string]struct {
			Index string `json:"index"`
			Alias string `json:"alias"`
		} `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRaw(w, http.StatusBadRequest, errorBody("parse_exception", err.Error(), http.StatusBadRequest))
		return
	}

	actions := make([]AliasAction, 0, len(body.Actions))
	for _, a := range body.Actions {
		for op, spec := range a {
			actions = append(actions, AliasAction{Op: op, Index: spec.Index, Alias: spec.Alias})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aliasFault != nil {
		if f := s.aliasFault(actions); f != nil {
			writeRaw(w, f.Status, f.Body)
			return
		}
	}

	for _, a := range actions {
		switch a.Op {
		case "add":
			if _, ok := s.indices[a.Index]; !ok {
				writeRaw(w, http.StatusNotFound, indexNotFound(a.Index))
				return
			}
		case "remove":
			if _, ok := s.aliases[a.Alias][a.Index]; !ok {
				writeRaw(w, http.StatusNotFound, errorBody("aliases_not_found_exception",
					fmt.Sprintf("aliases [%s] missing", a.Alias), http.StatusNotFound))
				return
			}
		default:
			writeRaw(w, http.StatusBadRequest, errorBody("illegal_argument_exception",
				fmt.Sprintf("unsupported action [%s]", a.Op), http.StatusBadRequest))
			return
		}
	}

	for _, a := range actions {
		switch a.Op {
		case "add":
			if s.aliases[a.Alias] == nil {
				s.aliases[a.Alias] = make(map[string]struct{})
			}
			s.aliases[a.Alias][a.Index] = struct{}{}
		case "remove":
			delete(s.aliases[a.Alias], a.Index)
			if len(s.aliases[a.Alias]) == 0 {
				delete(s.aliases, a.Alias)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": !s.aliasNoAck})
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request) {
	defaultIndex := chi.URLParam(r, "index")

	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.bulkFault; f != nil {
		writeRaw(w, f.Status, f.Body)
		return
	}

	items := make([]map[string]any, 0)
	hasErrors := false

	sc := bufio.NewScanner(r.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var meta map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}
		if err := json.Unmarshal(line, &meta); err != nil {
			writeRaw(w, http.StatusBadRequest, errorBody("parse_exception", err.Error(), http.StatusBadRequest))
			return
		}
		if !sc.Scan() {
			writeRaw(w, http.StatusBadRequest, errorBody("parse_exception", "missing document line", http.StatusBadRequest))
			return
		}
		var source map[string]any
		srcErr := json.Unmarshal(sc.Bytes(), &source)

		for op, m := range meta {
			name := m.Index
			if name == "" {
				name = defaultIndex
			}
			id := m.ID
			if id == "" {
				id = uuid.NewString()
			}
			item := map[string]any{"_index": name, "_id": id}

			idx, ok := s.indices[name]
			if !ok {
				idx = s.newIndex()
				s.indices[name] = idx
			}

			switch {
			case srcErr != nil:
				item["status"] = http.StatusBadRequest
				item["error"] = map[string]any{"type": "mapper_parsing_exception", "reason": srcErr.Error()}
			case s.reject != nil && s.reject(source):
				item["status"] = http.StatusBadRequest
				item["error"] = map[string]any{"type": "mapper_parsing_exception", "reason": "failed to parse document"}
			case idx.unknownField(source) != "":
				item["status"] = http.StatusBadRequest
				item["error"] = map[string]any{
					"type":   "strict_dynamic_mapping_exception",
					"reason": fmt.Sprintf("mapping set to strict, dynamic introduction of [%s] is not allowed", idx.unknownField(source)),
				}
			default:
				created := idx.put(id, source)
				if created {
					item["status"] = http.StatusCreated
					item["result"] = "created"
				} else {
					item["status"] = http.StatusOK
					item["result"] = "updated"
				}
			}
			if _, failed := item["error"]; failed {
				hasErrors = true
			}
			items = append(items, map[string]any{op: item})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"took": 1, "errors": hasErrors, "items": items})
}

// newIndex allocates an index with a creation date later than every
// index created before it. Callers hold s.mu.
func (s *Server) newIndex() *index {
	s.created++
	return &index{
		created: creationBase + s.created,
		fields:  make(map[string]struct{}),
		byID:    make(map[string]int),
	}
}

// put stores source under id and reports whether it was new.
func (i *index) put(id string, source map[string]any) bool {
	if pos, ok := i.byID[id]; ok {
		i.docs[pos].Source = source
		return false
	}
	i.byID[id] = len(i.docs)
	i.docs = append(i.docs, Doc{ID: id, Source: source})
	return true
}

func (i *index) unknownField(source map[string]any) string {
	if !i.strict {
		return ""
	}
	keys := make([]string, 0, len(source))
	for k := range source {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := i.fields[k]; !ok {
			return k
		}
	}
	return ""
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func indexNotFound(name string) string {
	return errorBody("index_not_found_exception", fmt.Sprintf("no such index [%s]", name), http.StatusNotFound)
}

func errorBody(typ, reason string, status int) string {
	b, _ := json.Marshal(map[string]any{
		"error":  map[string]any{"type": typ, "reason": reason},
		"status": status,
	})
	return string(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
