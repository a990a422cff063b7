package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":               "パイプラインを開始します",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Output saved to %s":              "出力を %s に保存しました",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",

		// Capture stage
		"Capturing %d frames at %.1f fps, %dx%d": "%d フレームを %.1f fps, %dx%d でキャプチャ中",
		"Captured %d frames via %s":              "%d フレームを %s でキャプチャしました",
		"Bulk decode failed, falling back to surface sampling: %s": "一括デコードに失敗しました。サーフェスサンプリングにフォールバックします: %s",
		"Failed to restore source state: %s":                       "ソース状態の復元に失敗しました: %s",

		// Quantize stage
		"Building shared palette (%d colors)": "共有パレットを構築中 (%d 色)",
		"Palette built: %d entries (%d distinct sampled colors)": "パレット構築完了: %d エントリ (サンプル色 %d 種)",

		// Encode stage
		"Encoding GIF with %s back-end":   "%s バックエンドで GIF をエンコード中",
		"GIF encoded: %d bytes":           "GIF エンコード完了: %d バイト",
		"Encoded %d frames into %d bytes": "%d フレームを %d バイトにエンコードしました",

		// Errors
		"Capture failed: %s":  "キャプチャに失敗しました: %s",
		"Quantize failed: %s": "量子化に失敗しました: %s",
		"Encoding failed: %s": "エンコードに失敗しました: %s",
	})
}
