package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// buildUpdateSet は部分更新ペイロードからSET句とバインド引数を構築する。
// allowedColumnsに含まれないキーは無視する（スキーマ外フィールドの防御）。
// 生成順を安定させるためキーはソートする。引数の$番号はstartIndexから始まる。
// []string値はPostgreSQLの配列としてバインドする。
func buildUpdateSet(payload Payload, allowedColumns map[string]bool, startIndex int) (string, []any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		if allowedColumns[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, key := range keys {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", key, startIndex+i))
		switch v := payload[key].(type) {
		case []string:
			args = append(args, pq.Array(v))
		default:
			args = append(args, v)
		}
	}

	return strings.Join(clauses, ", "), args
}
