// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザーが入力した自由記述フィールド
// （テナントのメモ、ロールの説明、プロフィールの氏名・肩書など）から
// マークアップを除去し、格納値をプレーンテキストに正規化する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は自由記述フィールドのサニタイズ機能の
// インターフェースを定義する。レコードの保存前に使用される。
type TextSanitizerService interface {
	// SanitizeText は入力から全てのHTMLタグを除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(input string) string

	// SanitizePayload はペイロード中の全string値をSanitizeTextで正規化する。
	// []string値は要素ごとに正規化する。その他の型は変更しない。
	SanitizePayload(payload map[string]any) map[string]any
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、
// スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は全てのHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) SanitizeText(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// SanitizePayload はペイロード中の文字列値を正規化する。
// 入力マップは変更せず、新しいマップを返す。
func (s *textSanitizer) SanitizePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			out[key] = s.SanitizeText(v)
		case []string:
			cleaned := make([]string, len(v))
			for i, item := range v {
				cleaned[i] = s.SanitizeText(item)
			}
			out[key] = cleaned
		default:
			out[key] = value
		}
	}
	return out
}
