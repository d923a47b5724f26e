package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration
		"Opening %s":                                    "%s を開いています",
		"Codec %s selected from %s":                     "コーデック %s を %s から選択しました",
		"Stream ready: %s %dx%d, %d slices":             "ストリーム準備完了: %s %dx%d, %d スライス",
		"Decoded slice %d/%d (%d instructions)":         "スライス %d/%d をデコードしました (%d 命令)",
		"Address layout rebuilt (generation %d)":        "アドレスレイアウトを再構築しました (世代 %d)",
		"Decoding finished: %d slices, %d instructions": "デコード完了: %d スライス, %d 命令",
		"Output saved to %s":                            "出力を %s に保存しました",
		"Summary written to %s":                         "サマリーを %s に書き込みました",
		"Debug output enabled: %s":                      "デバッグ出力が有効です: %s",
		"Interrupted, shutting down...":                 "中断されました。シャットダウン中...",

		// Codec internals
		"dimensions changed from %dx%d -> %dx%d": "解像度が %dx%d から %dx%d に変わりました",

		// Warnings
		"No slices left after limit %d":           "上限 %d の適用後にスライスが残っていません",
		"Range map not rendered: %s":              "レンジマップを描画できませんでした: %s",
		"Debug output for slice %d not saved: %s": "スライス %d のデバッグ出力を保存できませんでした: %s",

		// Errors
		"Slice %d failed: %s":        "スライス %d の処理に失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
		"Failed to probe %s: %s":     "%s の判別に失敗しました: %s",
	})
}
