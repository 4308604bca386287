package i18n

import "testing"

func TestCountryFlag(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"小文字2文字", "us", "\U0001F1FA\U0001F1F8"},
		{"大文字2文字", "JP", "\U0001F1EF\U0001F1F5"},
		{"混在", "De", "\U0001F1E9\U0001F1EA"},
		{"言語-地域形式は地域部分を採用", "en-US", "\U0001F1FA\U0001F1F8"},
		{"空文字は空を返す", "", ""},
		{"空白のみは空を返す", "  ", ""},
		{"1文字は空を返す", "u", ""},
		{"3文字は空を返す", "usa", ""},
		{"数字は空を返す", "12", ""},
		{"記号混在は空を返す", "u!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountryFlag(tt.code); got != tt.want {
				t.Errorf("CountryFlag(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

// usの国旗がU+1F1FA U+1F1F8の2コードポイントであることを検証
func TestCountryFlag_US_Codepoints(t *testing.T) {
	flag := []rune(CountryFlag("us"))

	if len(flag) != 2 {
		t.Fatalf("rune count = %d, want 2", len(flag))
	}
	if flag[0] != 0x1F1FA {
		t.Errorf("first rune = %U, want U+1F1FA", flag[0])
	}
	if flag[1] != 0x1F1F8 {
		t.Errorf("second rune = %U, want U+1F1F8", flag[1])
	}
}

func TestLanguages_CodesYieldFlags(t *testing.T) {
	for _, lang := range Languages() {
		if lang.Code == "" || lang.Name == "" {
			t.Errorf("language entry has empty field: %+v", lang)
		}
		if CountryFlag(lang.Code) == "" {
			t.Errorf("CountryFlag(%q) returned empty flag", lang.Code)
		}
	}
}
