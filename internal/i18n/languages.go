package i18n

// Language は言語セレクタの1選択肢を表す。
// Codeは国旗絵文字の導出にも使用される。
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages はプロフィールエディタの言語セレクタに提示する言語カタログを返す。
func Languages() []Language {
	return []Language{
		{Code: "bg", Name: "Bulgarian"},
		{Code: "cn", Name: "Chinese"},
		{Code: "cz", Name: "Czech"},
		{Code: "de", Name: "German"},
		{Code: "dk", Name: "Danish"},
		{Code: "es", Name: "Spanish"},
		{Code: "fi", Name: "Finnish"},
		{Code: "fr", Name: "French"},
		{Code: "gb", Name: "English"},
		{Code: "gr", Name: "Greek"},
		{Code: "hu", Name: "Hungarian"},
		{Code: "it", Name: "Italian"},
		{Code: "jp", Name: "Japanese"},
		{Code: "kr", Name: "Korean"},
		{Code: "nl", Name: "Dutch"},
		{Code: "no", Name: "Norwegian"},
		{Code: "pl", Name: "Polish"},
		{Code: "pt", Name: "Portuguese"},
		{Code: "ro", Name: "Romanian"},
		{Code: "ru", Name: "Russian"},
		{Code: "se", Name: "Swedish"},
		{Code: "tr", Name: "Turkish"},
		{Code: "ua", Name: "Ukrainian"},
		{Code: "us", Name: "English (US)"},
	}
}
