package commands

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}_\-]+`)

// filenameFor turns a tag into something safe to use as a file name.
func filenameFor(tag, ext string) string {
	name := unsafeFilename.ReplaceAllString(tag, "_")
	if name == "" {
		name = "_"
	}
	return name + ext
}

func writeFile(dir, name string, write func(w io.Writer) error) (string, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	err = write(f)
	if err != nil {
		return "", err
	}
	return path, f.Close()
}
