// Package fuzztests holds fuzz targets for the assembler front end.
package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".tkasm" {
			return nil
		}
		// #nosec G304 -- path comes from the repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil || len(src) > maxSeedBytes {
			return nil
		}
		f.Add(src)
		return nil
	})
}

var languageSeeds = []string{
	"",
	"@modname \"m\"\nfn main\n:entry\nret\n",
	"%const \"n\" = 18446744073709551615\n%const \"f\" = -1.5e3\n%const \"s\" = \"a\\tb\\\"c\"\n",
	"%typedef \"r\" = record(\"integer\", array(2, \"float\"))\n",
	"fn f\n:a\njump :b\n:b\nlpush 1 lpush 2 add jtrue :a\nret\n",
	"fn f\n:a\nfcall \"m.f\" toslot 0 fromslot 0 ret\n",
	"fn f\n:a\npush 70000\n",
	"# only a comment",
	"%const \"x = 1\n",
	"fn\n:\n@\n%\n(\n)\n,\n=\n",
}
