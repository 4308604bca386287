// Package form はエディタフォーム送信値から永続化ペイロードを構築する。
package form

import "net/url"

// Field はフォームの1フィールドの定義を表す。
type Field struct {
	// Name はフォーム要素名（永続化カラム名と一致する）。
	Name string
	// Multi は複数選択フィールドかどうか。
	Multi bool
}

// Schema はリソースごとのフォームフィールド定義を表す。
// スキーマ外のフィールドはペイロードに含めない。
type Schema struct {
	Fields []Field
}

// Filter は送信値からペイロードを構築する。
//   - 空値のフィールドは省略する（nullとしては送らない）
//   - 複数選択フィールドは選択された全オプション値を送信順で収集する
//   - スキーマに含まれないフィールドは無視する
//
// 単一値フィールドはstring、複数選択フィールドは[]stringとして格納される。
func Filter(values url.Values, schema Schema) map[string]any {
	payload := make(map[string]any)

	for _, field := range schema.Fields {
		raw, ok := values[field.Name]
		if !ok || len(raw) == 0 {
			continue
		}

		if field.Multi {
			selected := make([]string, 0, len(raw))
			for _, v := range raw {
				if v != "" {
					selected = append(selected, v)
				}
			}
			if len(selected) == 0 {
				continue
			}
			payload[field.Name] = selected
			continue
		}

		if raw[0] == "" {
			continue
		}
		payload[field.Name] = raw[0]
	}

	return payload
}
