// Package i18n は言語・地域の表示補助を提供する。
package i18n

import "strings"

// regionalIndicatorBase は 'A' をU+1F1E6（REGIONAL INDICATOR SYMBOL LETTER A）に
// 写像するためのオフセット。
const regionalIndicatorBase = 0x1F1E6 - 'A'

// CountryFlag はISO国コードから国旗絵文字を生成する。
// "us" → 🇺🇸（U+1F1FA U+1F1F8）のように、2文字のコードを
// 地域表示記号のペアへ写像する。
// "en-US" のような言語-地域形式は地域部分を採用する。
// 空文字や2文字のラテン文字に解決できない入力には空文字を返す。
func CountryFlag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}

	// 言語-地域形式（"EN-US"）は地域部分を採用する
	if len(code) == 5 && code[2] == '-' {
		code = code[3:]
	}

	if len(code) != 2 {
		return ""
	}

	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(c + regionalIndicatorBase)
	}
	return b.String()
}
