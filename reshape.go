package ronin

import (
	"github.com/ronin-co/compiler/internal/cursor"
	"github.com/ronin-co/compiler/internal/query"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// QueryResult is one input query's reshaped output (spec.md §6 "Output —
// result"). Exactly one of Record, Records or Amount is populated,
// matching whether the query addressed a single record, many records, or
// was a count. Models is populated only for a query addressed at the
// pseudo-model "all", keyed by each member model's plural slug.
type QueryResult struct {
	Record      map[string]any
	Records     []map[string]any
	Amount      *float64
	MoreBefore  *string
	MoreAfter   *string
	ModelFields []schema.LoadedField
	Models      map[string]*QueryResult
}

// FormatResults reshapes a driver's row sets back into nested records
// (spec.md §4.6 "formatResults"). rowSets must align 1:1 with
// Statements(): one []map[string]any per compiled statement, keyed by
// column alias, empty for statements that don't return rows.
func (tx *Transaction) FormatResults(rowSets [][]map[string]any) ([]*QueryResult, error) {
	results := make([]*QueryResult, len(tx.plans))
	offset := 0
	for i, p := range tx.plans {
		var rows []map[string]any
		if p.mainIdx >= 0 {
			rows = rowSets[offset+p.mainIdx]
		}
		offset += len(p.stmts)

		res, err := tx.formatOne(p, rows)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}

	// Fold `all`-expansion members back under their originating plan,
	// nested by plural slug (spec.md §4.6).
	var out []*QueryResult
	byGroup := map[int]*QueryResult{}
	for i, p := range tx.plans {
		if p.groupIndex < 0 {
			out = append(out, results[i])
			continue
		}
		group, ok := byGroup[p.groupIndex]
		if !ok {
			group = &QueryResult{Models: map[string]*QueryResult{}}
			byGroup[p.groupIndex] = group
			out = append(out, group)
		}
		group.Models[p.resultKey] = results[i]
	}
	return out, nil
}

func (tx *Transaction) formatOne(p queryPlan, rows []map[string]any) (*QueryResult, error) {
	if p.kind == schema.Count {
		var amount *float64
		if len(rows) > 0 {
			if v, ok := rows[0]["amount"].(float64); ok {
				amount = &v
			}
		}
		return &QueryResult{Amount: amount}, nil
	}

	records, err := foldRows(p.loaded, rows)
	if err != nil {
		return nil, err
	}

	res := &QueryResult{ModelFields: p.loaded}

	if p.single {
		if len(records) > 0 {
			res.Record = records[0]
		}
		return res, nil
	}

	if p.limitedTo != nil && len(records) > *p.limitedTo {
		records = records[:len(records)-1]
		if len(records) > 0 {
			if after, cerr := tx.pageCursor(p, records[len(records)-1]); cerr == nil {
				res.MoreAfter = after
			}
		}
	}
	if p.before != nil && len(records) > 0 {
		if before, cerr := tx.pageCursor(p, records[0]); cerr == nil {
			res.MoreBefore = before
		}
	}

	res.Records = records
	return res, nil
}

// foldRows normalises each row onto its mounting paths, then folds
// consecutive rows sharing a root "id" into one record, appending any
// join-array values de-duplicated by the joined row's own "id"
// (spec.md §4.6 steps 2-4).
func foldRows(loaded []schema.LoadedField, rows []map[string]any) ([]map[string]any, error) {
	var records []map[string]any
	var lastID any

	for _, row := range rows {
		flat := map[string]any{}
		for _, lf := range loaded {
			flat[lf.MountingPath] = row[lf.Alias]
		}
		expanded := symbols.Expand(flat)

		rootID := expanded["id"]
		if len(records) > 0 && rootID != nil && rootID == lastID {
			mergeJoinArrays(records[len(records)-1], expanded)
			continue
		}

		records = append(records, expanded)
		lastID = rootID
	}
	return records, nil
}

// mergeJoinArrays appends src's array-valued fields onto dst's matching
// fields, skipping elements whose "id" already appears in dst's array
// (spec.md §4.6 step 4, de-duplication of repeated join rows).
func mergeJoinArrays(dst, src map[string]any) {
	for key, val := range src {
		arr, ok := val.([]any)
		if !ok {
			continue
		}
		dstArr, _ := dst[key].([]any)
		for _, item := range arr {
			if !containsByID(dstArr, item) {
				dstArr = append(dstArr, item)
			}
		}
		dst[key] = dstArr
	}
}

func containsByID(arr []any, item any) bool {
	itemMap, ok := item.(map[string]any)
	if !ok {
		for _, existing := range arr {
			if existing == item {
				return true
			}
		}
		return false
	}
	itemID := itemMap["id"]
	for _, existing := range arr {
		if existingMap, ok := existing.(map[string]any); ok && existingMap["id"] == itemID {
			return true
		}
	}
	return false
}

// pageCursor computes the opaque cursor string for the page boundary at
// record, using the same ordering (including the ronin.createdAt
// tie-break) the compiler applied when building this plan's SQL.
func (tx *Transaction) pageCursor(p queryPlan, record map[string]any) (*string, error) {
	if p.model == nil {
		return nil, nil
	}
	ob := p.orderedBy
	if p.limitedTo != nil {
		ob = query.WithCreatedAtTieBreak(ob)
	}

	var values []cursor.FieldValue
	for _, slug := range ob.Ascending {
		values = append(values, fieldValueAt(p.model, record, slug))
	}
	for _, slug := range ob.Descending {
		values = append(values, fieldValueAt(p.model, record, slug))
	}
	encoded := cursor.Encode(values)
	return &encoded, nil
}

func fieldValueAt(m *schema.Model, record map[string]any, slug string) cursor.FieldValue {
	var ft schema.FieldType
	if f := m.GetField(slug); f != nil {
		ft = f.Type
	} else if schema.IsSystemFieldSlug(slug) {
		ft = schema.FieldDate
	}
	return cursor.FieldValue{Value: valueAtPath(record, slug), Type: ft}
}

func valueAtPath(record map[string]any, path string) any {
	flat := symbols.Flatten(record)
	return flat[path]
}
