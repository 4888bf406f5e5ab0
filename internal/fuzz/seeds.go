package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

var inlineSeeds = []string{
	``,
	`rule a { condition: true }`,
	`rule a : t { meta: k = "v" n = -1 b = false strings: $x = "x" nocase wide $h = { 4D 5A ?? } condition: $x or #h > 0 }`,
	`import "string" rule a { condition: string.to_int("zz", 40) == 0 }`,
	`import "math" rule a { condition: math.to_string(255, 16) == "ff" and 1 \ 0 == 0 }`,
	`rule a { condition: all of them }`,
	`rule a { strings: $a = "a" $b = "b" condition: 2 of ($a, $b) }`,
	`global private rule g { condition: not defined (1 % 0) }`,
	`rule a { condition: b } rule b { condition: a }`,
	`rule "unterminated { condition: "`,
	`rule a { condition: ((((((((((1)))))))))) == 1 }`,
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.yar файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".yar" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
