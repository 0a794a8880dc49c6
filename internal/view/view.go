// Package view は埋め込みテンプレートによるHTMLレンダリングを提供する。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/minpost/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageData はテンプレートへ渡す表示データ。
// 使用しないフィールドはゼロ値のままで構わない。
type PageData struct {
	Title     string
	UserEmail string        // ログイン中ユーザーのメールアドレス（匿名時は空）
	Error     string        // フォーム再表示時のエラーメッセージ
	Email     string        // フォーム再表示時の入力済みメールアドレス
	Posts     []*model.Post // 一覧ページ用
	Post      *model.Post   // 詳細・編集ページ用
}

// Renderer はページ名ごとにパース済みテンプレートを保持する。
// 全テンプレートは起動時にパースされるため、実行時のパース失敗はない。
type Renderer struct {
	pages map[string]*template.Template
}

// pageFiles はページ名とテンプレートファイルの対応。
// 各ページはlayout.htmlと組でパースされる。
var pageFiles = map[string]string{
	"register":    "templates/register.html",
	"login":       "templates/login.html",
	"posts_index": "templates/posts_index.html",
	"post_show":   "templates/post_show.html",
	"post_form":   "templates/post_form.html",
}

// funcMap はテンプレート関数。rawHTMLはサニタイズ済み本文を
// エスケープせずに出力するために使う（保存前にbluemondayを通した
// 値にのみ適用すること）。
var funcMap = template.FuncMap{
	"rawHTML": func(s string) template.HTML { return template.HTML(s) },
}

// NewRenderer は埋め込みテンプレートをすべてパースしたRendererを返す。
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for name, file := range pageFiles {
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render は指定ページをレンダリングする。
// フォームの検証エラー再表示にも使うため、statusは呼び出し側が決める
// （エラー付きフォームの再表示は200で返す）。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		slog.Error("unknown template page", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		// ヘッダー送信後なのでステータスは変えられない。ログのみ。
		slog.Error("template execution failed",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
