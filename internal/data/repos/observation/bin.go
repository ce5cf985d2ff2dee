package observation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/jsonbin"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const DefaultCollectionField = "observations"

// binRepo keeps the whole collection in one hosted JSON document. Every mutation is a
// GET followed by a PUT of the full document; two writers racing between those calls
// lose one of the writes.
type binRepo struct {
	client jsonbin.Client
	field  string
	log    *logger.Logger
}

func NewBinRepo(client jsonbin.Client, collectionField string, baseLog *logger.Logger) Repo {
	field := strings.TrimSpace(collectionField)
	if field == "" {
		field = DefaultCollectionField
	}
	return &binRepo{
		client: client,
		field:  field,
		log:    baseLog.With("repo", "BinObservationRepo"),
	}
}

func (r *binRepo) Backend() string { return BackendJSONBin }

func (r *binRepo) ListAll(ctx context.Context) ([]*domain.Observation, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Observation, 0, len(doc.items))
	for _, it := range doc.items {
		if it.obj == nil {
			continue
		}
		out = append(out, it.observation())
	}
	return out, nil
}

func (r *binRepo) ListOpen(ctx context.Context) ([]*domain.Observation, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterOpen(all), nil
}

func (r *binRepo) Insert(ctx context.Context, obs *domain.Observation) error {
	if obs == nil {
		return fmt.Errorf("nil observation")
	}
	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	id := doc.maxID() + 1
	entry := binItem{obj: map[string]any{
		"id":          id,
		"name":        obs.Name,
		"department":  obs.Department,
		"description": obs.Description,
		"fix":         obs.Fix,
		"status":      obs.Status,
		"date":        obs.Date,
	}}
	doc.items = append([]binItem{entry}, doc.items...)
	return r.store(ctx, doc)
}

func (r *binRepo) Update(ctx context.Context, id int64, status, fix string) error {
	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	target := strconv.FormatInt(id, 10)
	matched := 0
	for _, it := range doc.items {
		if it.obj == nil || idString(it.obj["id"]) != target {
			continue
		}
		it.obj["status"] = status
		it.obj["fix"] = fix
		matched++
	}
	if matched == 0 {
		r.log.Debug("Update matched no observation", "observation_id", id)
	}
	return r.store(ctx, doc)
}

// binDocument is the decoded bin: top-level fields other than the collection are kept
// verbatim so a rewrite does not drop them.
type binDocument struct {
	top   map[string]json.RawMessage
	items []binItem
}

// binItem is one collection element. Elements that are not JSON objects are carried
// through rewrites untouched and hidden from listings.
type binItem struct {
	obj map[string]any
	raw json.RawMessage
}

func (r *binRepo) load(ctx context.Context) (*binDocument, error) {
	raw, err := r.client.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode bin document: invalid JSON")
	}

	doc := &binDocument{top: map[string]json.RawMessage{}}
	if err := json.Unmarshal(raw, &doc.top); err != nil || doc.top == nil {
		r.log.Warn("Bin document is not an object; treating collection as empty")
		doc.top = map[string]json.RawMessage{}
		return doc, nil
	}

	var elems []json.RawMessage
	field, ok := doc.top[r.field]
	if !ok {
		r.log.Warn("Bin document has no collection field; treating as empty", "field", r.field)
		return doc, nil
	}
	if err := json.Unmarshal(field, &elems); err != nil || elems == nil {
		r.log.Warn("Bin collection field is not an array; treating as empty", "field", r.field)
		return doc, nil
	}

	doc.items = make([]binItem, 0, len(elems))
	for _, el := range elems {
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader(el))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil || obj == nil {
			doc.items = append(doc.items, binItem{raw: el})
			continue
		}
		doc.items = append(doc.items, binItem{obj: obj})
	}
	return doc, nil
}

func (r *binRepo) store(ctx context.Context, doc *binDocument) error {
	elems := make([]any, 0, len(doc.items))
	for _, it := range doc.items {
		if it.obj != nil {
			elems = append(elems, it.obj)
		} else {
			elems = append(elems, it.raw)
		}
	}
	out := make(map[string]any, len(doc.top)+1)
	for k, v := range doc.top {
		out[k] = v
	}
	out[r.field] = elems
	return r.client.Put(ctx, out)
}

// maxID is the high-water mark over numeric ids; missing or non-numeric ids count as 0.
func (d *binDocument) maxID() int64 {
	var max int64
	for _, it := range d.items {
		if it.obj == nil {
			continue
		}
		if id := numericID(it.obj["id"]); id > max {
			max = id
		}
	}
	return max
}

func (it binItem) observation() *domain.Observation {
	return &domain.Observation{
		ID:          numericID(it.obj["id"]),
		Name:        stringField(it.obj["name"]),
		Department:  stringField(it.obj["department"]),
		Description: stringField(it.obj["description"]),
		Fix:         stringField(it.obj["fix"]),
		Status:      stringField(it.obj["status"]),
		Date:        stringField(it.obj["date"]),
	}
}

func numericID(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i
		}
	case int64:
		return t
	}
	return 0
}

// idString renders an id the way it compares on update: numbers and numeric strings by value.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		if i := numericID(t); i != 0 || t.String() == "0" {
			return strconv.FormatInt(i, 10)
		}
		return t.String()
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
