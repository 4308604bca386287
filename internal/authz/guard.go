package authz

// Decision はルートゲートの判定結果を表す。
type Decision struct {
	// Allowed はリクエストの通過可否。
	Allowed bool
	// RedirectTo は拒否時のリダイレクト先パス。許可時は空。
	RedirectTo string
}

// Allow は通過を表すDecisionを返す。
func Allow() Decision {
	return Decision{Allowed: true}
}

// Redirect は指定パスへのリダイレクトを表すDecisionを返す。
func Redirect(target string) Decision {
	return Decision{Allowed: false, RedirectTo: target}
}

// Guard はビューゲートの判定を行う。
//   - 匿名セッション → Redirect(loginPath)
//   - requiredPermissionが指定され、かつ未保持 → Redirect(loginPath)
//   - それ以外 → Allow
//
// requiredPermissionが空の場合は認証済みであれば通過する
// （認証のみのゲート。クレーム内容は参照しない）。
// ゲート自体は状態を持たず、リクエストごとに再評価される。
func Guard(p *Principal, requiredPermission string, loginPath string) Decision {
	if p == nil {
		return Redirect(loginPath)
	}
	if requiredPermission != "" && !HasPermission(p, requiredPermission) {
		return Redirect(loginPath)
	}
	return Allow()
}
