// Package main provides localization for the avdcmd CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":   "入力",
		"Output":  "出力先",
		"Debug":   "デバッグ",
		"Logging": "ログ",

		// Root command
		"Build hardware decoder command buffers from parsed bitstreams": "解析済みビットストリームからハードウェアデコーダのコマンドバッファを生成",

		"avdcmd replays a syntax dump through the decoder model and writes the instruction FIFOs the accelerator would consume.": "avdcmdはシンタックスダンプをデコーダモデルで再生し、アクセラレータが処理する命令FIFOを書き出します。",

		// Version command
		"avdcmd (Go) version %s": "avdcmd (Go版) バージョン %s",

		// Commands
		"Decode a syntax dump into command buffers":       "シンタックスダンプをコマンドバッファにデコード",
		"Identify the codec of a syntax dump or MP4 file": "シンタックスダンプまたはMP4ファイルのコーデックを判定",

		// Input flags
		"YAML configuration file":                   "YAML設定ファイル",
		"Codec (auto, h264, h265, vp9)":             "コーデック（auto, h264, h265, vp9）",
		"Decode at most this many slices (0 = all)": "デコードするスライスの上限（0 = 全て）",

		// Output flags
		"Directory for command buffers":                                  "コマンドバッファの出力ディレクトリ",
		"Output execution summary to file (Markdown, or YAML for .yaml)": "実行サマリーをファイルに出力（Markdown形式、.yamlならYAML形式）",

		// Debug flags
		"Do not render the address map":            "アドレスマップを描画しない",
		"Scale the address map down to this width": "アドレスマップをこの幅に縮小",
		"Enable debug output":                      "デバッグ出力を有効化",
		"Directory for debug output":               "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"Decoding %s...":              "%s をデコード中...",
		"%s: %s (from %s)":            "%s: %s（%s から判定）",
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Error messages
		"Input dump argument is required": "入力ダンプの引数が必要です",
		"File argument is required":       "ファイル引数が必要です",

		// Summary content
		"Decode Summary":      "デコードサマリー",
		"Generated":           "生成日時",
		"Item":                "項目",
		"Value":               "値",
		"Input File":          "入力ファイル",
		"Codec":               "コーデック",
		"Dimensions":          "解像度",
		"Decoding":            "デコード",
		"Slices":              "スライス数",
		"Intra Slices":        "イントラスライス数",
		"Instructions":        "命令数",
		"Command Data":        "コマンドデータ量",
		"Output Directory":    "出力ディレクトリ",
		"Address Layout":      "アドレスレイアウト",
		"No ranges published": "公開されたレンジはありません",
		"Layouts":             "レイアウト数",
		"Name":                "名前",
		"Size":                "サイズ",
		"End of Layout":       "レイアウト終端",

		// Codec sources
		"config":    "設定",
		"dump":      "ダンプ",
		"container": "コンテナ",
	})
}
