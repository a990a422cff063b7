// Package main provides localization for the gifclip CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":   "出力先",
		"Capture":  "キャプチャ",
		"Encoding": "エンコード",
		"Source":   "ソース",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Root command
		"Convert a time range of a video into an animated GIF": "動画の時間範囲をアニメーションGIFに変換",

		// Capture command
		"Capture a video range and encode it as an animated GIF": "動画の範囲をキャプチャしてアニメーションGIFにエンコード",

		// Encoders command
		"List available GIF encoder back-ends": "利用可能なGIFエンコーダーバックエンドを一覧表示",
		"available":                            "利用可能",
		"unavailable":                          "利用不可",

		// Output flags
		"Output GIF file path (required)":          "出力GIFファイルパス（必須）",
		"Also write a PNG thumbnail to this path":  "PNGサムネイルもこのパスに書き出す",
		"YAML configuration file":                  "YAML設定ファイル",

		// Capture flags
		"Start time in seconds":                             "開始時刻（秒）",
		"End time in seconds":                               "終了時刻（秒）",
		"Sampling frame rate (max 60)":                      "サンプリングフレームレート（最大60）",
		"Quality preset (low, medium, high)":                "品質プリセット（low, medium, high）",
		"Maximum output width in pixels":                    "出力の最大幅（ピクセル）",
		"Maximum output height in pixels":                   "出力の最大高さ（ピクセル）",
		"Frame extraction strategy (auto, surface, decode)": "フレーム抽出方式（auto, surface, decode）",

		// Encoding flags
		"Loop count (0 = forever, N = N+1 plays, negative = play once)": "ループ回数（0 = 無限、N = N+1回再生、負数 = 1回再生）",
		"Palette quantizer (histogram, mediancut)":                      "パレット量子化方式（histogram, mediancut）",
		"Encoder back-end name (default: automatic selection)":          "エンコーダーバックエンド名（デフォルト: 自動選択）",
		"Retry with another back-end if encoding fails mid-run":         "エンコード失敗時に別のバックエンドで再試行",

		// Source flags
		"Source kind (auto, file, chrome, playwright)": "ソース種別（auto, file, chrome, playwright）",
		"CSS selector for the video element":           "動画要素のCSSセレクター",
		"Extra HTTP header as Name:Value (repeatable)": "追加HTTPヘッダー（Name:Value形式、複数指定可）",
		"Run browser in non-headless mode":             "ブラウザを非ヘッドレスモードで実行",
		"Path to Chrome executable":                    "Chrome実行ファイルのパス",
		"Path to ffmpeg executable":                    "ffmpeg実行ファイルのパス",
		"Ignore HTTPS certificate errors":              "HTTPS証明書エラーを無視",
		"HTTP proxy server (e.g., http://proxy:8080)":  "HTTPプロキシサーバー（例: http://proxy:8080）",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"Capturing %s (%.1fs-%.1fs at %.0f fps)...":                  "%s をキャプチャ中 (%.1f秒-%.1f秒、%.0f fps)...",
		"Output saved to %s (%dx%d, %d frames, %d bytes, %s encoder)": "出力を %s に保存しました（%dx%d、%dフレーム、%dバイト、%sエンコーダー）",
		"Interrupted, shutting down...":                              "中断されました。シャットダウン中...",
		"[%s] %d%% %s":                                               "[%s] %d%% %s",

		// Error messages
		"input file or URL argument is required": "入力ファイルまたはURL引数が必要です",
		"invalid header %q, expected Name:Value": "不正なヘッダー %q（Name:Value形式が必要）",
		"unknown source kind %q":                 "不明なソース種別 %q",
	})
}
